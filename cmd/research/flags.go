package main

import (
	"github.com/metaarchitect/research-engine/pkg/config"
	cli "github.com/urfave/cli/v3"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML configuration file",
			Sources: cli.EnvVars("RESEARCH_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "records-url",
			Usage:   "Record store: empty or airtable:// for Airtable, postgres://..., memory://",
			Sources: cli.EnvVars("RECORDS_URL", "DATABASE_URL"),
		},
		&cli.StringFlag{
			Name:    "airtable-base-id",
			Usage:   "Airtable base id",
			Sources: cli.EnvVars("AIRTABLE_BASE_ID"),
		},
		&cli.StringFlag{
			Name:    "airtable-token",
			Usage:   "Airtable personal access token",
			Sources: cli.EnvVars("AIRTABLE_PAT"),
		},
		&cli.StringFlag{
			Name:    "table-ideas",
			Usage:   "Ideas table name",
			Sources: cli.EnvVars("AIRTABLE_TABLE_IDEAS"),
		},
		&cli.StringFlag{
			Name:    "table-logs",
			Usage:   "Logs table name",
			Sources: cli.EnvVars("AIRTABLE_TABLE_LOGS"),
		},
		&cli.StringFlag{
			Name:    "table-brand",
			Usage:   "Brand table name",
			Sources: cli.EnvVars("AIRTABLE_TABLE_BRAND"),
		},
		&cli.StringFlag{
			Name:    "table-hooks",
			Usage:   "Hooks library table name",
			Sources: cli.EnvVars("AIRTABLE_TABLE_HOOKS"),
		},
		&cli.StringFlag{
			Name:    "artifacts",
			Usage:   "Artifact store: a directory, file://... or redis://...",
			Sources: cli.EnvVars("ARTIFACTS_URL"),
		},
		&cli.StringFlag{
			Name:    "perplexity-api-key",
			Usage:   "Perplexity API key",
			Sources: cli.EnvVars("PERPLEXITY_API_KEY"),
		},
		&cli.StringFlag{
			Name:    "perplexity-model",
			Usage:   "Perplexity model used for research queries",
			Sources: cli.EnvVars("PERPLEXITY_MODEL"),
		},
		&cli.StringFlag{
			Name:    "profile",
			Usage:   "UIF validation profile (standard, strict)",
			Sources: cli.EnvVars("UIF_PROFILE"),
		},
		&cli.StringFlag{
			Name:    "brand-name",
			Usage:   "Only use the brand record with this name",
			Sources: cli.EnvVars("BRAND_NAME"),
		},
		&cli.StringFlag{
			Name:    "event-bus",
			Usage:   "Event bus type (none, gochannel, kafka)",
			Sources: cli.EnvVars("EVENT_BUS_TYPE"),
		},
		&cli.StringFlag{
			Name:    "kafka-brokers",
			Usage:   "Comma separated Kafka brokers",
			Sources: cli.EnvVars("KAFKA_BROKERS"),
		},
		&cli.BoolFlag{
			Name:    "otel",
			Usage:   "Export traces over OTLP HTTP",
			Sources: cli.EnvVars("OTEL_ENABLED"),
		},
	}
}

// loadConfig reads the configuration file and applies every flag that was set explicitly or
// through its environment variable.
func loadConfig(command *cli.Command) (config.Config, error) {
	cfg, err := config.Load(command.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"log-level", &cfg.LogLevel},
		{"records-url", &cfg.Records.URL},
		{"airtable-base-id", &cfg.Records.Airtable.BaseID},
		{"airtable-token", &cfg.Records.Airtable.Token},
		{"table-ideas", &cfg.Research.Tables.Ideas},
		{"table-logs", &cfg.Research.Tables.Logs},
		{"table-brand", &cfg.Research.Tables.Brand},
		{"table-hooks", &cfg.Research.Tables.Hooks},
		{"artifacts", &cfg.Artifacts.URL},
		{"perplexity-api-key", &cfg.Query.APIKey},
		{"perplexity-model", &cfg.Query.Model},
		{"profile", &cfg.Research.Profile},
		{"brand-name", &cfg.Research.BrandName},
		{"event-bus", &cfg.EventBus.Provider},
		{"kafka-brokers", &cfg.EventBus.Brokers},
	}

	for _, o := range overrides {
		if command.IsSet(o.flag) {
			*o.target = command.String(o.flag)
		}
	}

	if command.IsSet("otel") {
		cfg.Tracing = command.Bool("otel")
	}

	return cfg, nil
}
