// Package config loads the research engine configuration from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/metaarchitect/research-engine/pkg/research"
	"github.com/metaarchitect/research-engine/pkg/uif"
	"gopkg.in/yaml.v3"
)

// Record store backends.
const (
	BackendAirtable = "airtable"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config is the complete configuration of the research engine.
type Config struct {
	LogLevel  string          `yaml:"log_level" validate:"oneof=debug info warn error"`
	Records   RecordsConfig   `yaml:"records"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Query     QueryConfig     `yaml:"query"`
	Research  ResearchConfig  `yaml:"research"`
	EventBus  EventBusConfig  `yaml:"event_bus"`
	Server    ServerConfig    `yaml:"server"`
	Reaper    ReaperConfig    `yaml:"reaper"`
	Tracing   bool            `yaml:"tracing"`
}

// RecordsConfig selects the record store. An empty URL or airtable:// uses Airtable.
type RecordsConfig struct {
	URL      string         `yaml:"url"`
	Airtable AirtableConfig `yaml:"airtable"`
}

type AirtableConfig struct {
	BaseURL string        `yaml:"base_url" validate:"omitempty,url"`
	BaseID  string        `yaml:"base_id"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"  validate:"gte=0"`
}

// ArtifactsConfig selects the artifact store: a directory, file:// or redis:// URL.
type ArtifactsConfig struct {
	URL    string `yaml:"url"    validate:"required"`
	Prefix string `yaml:"prefix"`
}

type QueryConfig struct {
	BaseURL string        `yaml:"base_url" validate:"omitempty,url"`
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"    validate:"required"`
	Timeout time.Duration `yaml:"timeout"  validate:"gte=0"`
}

type TablesConfig struct {
	Ideas string `yaml:"ideas" validate:"required"`
	Logs  string `yaml:"logs"  validate:"required"`
	Brand string `yaml:"brand" validate:"required"`
	Hooks string `yaml:"hooks" validate:"required"`
}

type ResearchConfig struct {
	Tables        TablesConfig `yaml:"tables"`
	BrandName     string       `yaml:"brand_name"`
	Profile       string       `yaml:"profile"        validate:"oneof=standard strict"`
	Pillars       []string     `yaml:"pillars"        validate:"dive,required"`
	CompilerModel string       `yaml:"compiler_model" validate:"required"`
	HookModel     string       `yaml:"hook_model"     validate:"required"`
}

type EventBusConfig struct {
	Provider string `yaml:"provider" validate:"oneof=none gochannel kafka"`
	Brokers  string `yaml:"brokers"  validate:"required_if=Provider kafka"`
}

type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0,lte=65535"`
}

type ReaperConfig struct {
	Schedule string        `yaml:"schedule" validate:"required"`
	MaxAge   time.Duration `yaml:"max_age"  validate:"gt=0"`
}

// Default returns the configuration used when no file or flag overrides a value.
func Default() Config {
	defaults := research.DefaultConfig()

	return Config{
		LogLevel:  "info",
		Artifacts: ArtifactsConfig{URL: "file://.research"},
		Query:     QueryConfig{Model: defaults.QueryModel},
		Research: ResearchConfig{
			Tables: TablesConfig{
				Ideas: defaults.Tables.Ideas,
				Logs:  defaults.Tables.Logs,
				Brand: defaults.Tables.Brand,
				Hooks: defaults.Tables.Hooks,
			},
			Profile:       string(defaults.Profile),
			Pillars:       defaults.Pillars,
			CompilerModel: defaults.CompilerModel,
			HookModel:     defaults.HookModel,
		},
		EventBus: EventBusConfig{Provider: "none"},
		Server:   ServerConfig{Port: 9091},
		Reaper:   ReaperConfig{Schedule: "*/15 * * * *", MaxAge: 2 * time.Hour},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return cfg, nil
}

// RecordsBackend names the record store selected by the records URL.
func (c Config) RecordsBackend() (string, error) {
	scheme, _, _ := strings.Cut(c.Records.URL, "://")

	switch scheme {
	case "", BackendAirtable:
		return BackendAirtable, nil
	case BackendPostgres, "postgresql":
		return BackendPostgres, nil
	case BackendMemory:
		return BackendMemory, nil
	default:
		return "", fmt.Errorf("unsupported record store %q", c.Records.URL)
	}
}

// Validate checks the struct tags and the backend specific requirements.
func (c Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	err := validate.Struct(c)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			messages := make([]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				messages = append(messages, fmt.Sprintf("%s failed on %s", fieldErr.Namespace(), fieldErr.Tag()))
			}

			return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
		}

		return fmt.Errorf("invalid configuration: %w", err)
	}

	backend, err := c.RecordsBackend()
	if err != nil {
		return err
	}

	if backend == BackendAirtable && (c.Records.Airtable.BaseID == "" || c.Records.Airtable.Token == "") {
		return errors.New("invalid configuration: airtable base id and token are required")
	}

	return nil
}

// Controller maps the configuration onto the research controller settings.
func (c Config) Controller() (research.Config, error) {
	profile, err := uif.ParseProfile(c.Research.Profile)
	if err != nil {
		return research.Config{}, err
	}

	return research.Config{
		Tables: research.Tables{
			Ideas: c.Research.Tables.Ideas,
			Logs:  c.Research.Tables.Logs,
			Brand: c.Research.Tables.Brand,
			Hooks: c.Research.Tables.Hooks,
		},
		BrandName:     c.Research.BrandName,
		Profile:       profile,
		Pillars:       c.Research.Pillars,
		QueryModel:    c.Query.Model,
		CompilerModel: c.Research.CompilerModel,
		HookModel:     c.Research.HookModel,
	}, nil
}
