package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/metaarchitect/research-engine/pkg/cmd"
	"github.com/metaarchitect/research-engine/pkg/events"
	"github.com/metaarchitect/research-engine/pkg/log"
	"github.com/metaarchitect/research-engine/pkg/reaper"
	"github.com/metaarchitect/research-engine/pkg/research"
	"github.com/metaarchitect/research-engine/pkg/uif"
	"github.com/metaarchitect/research-engine/pkg/web"
	cli "github.com/urfave/cli/v3"
)

// setup loads the configuration, installs the logger and opens the runtime.
func setup(ctx context.Context, command *cli.Command, requireQuery bool) (*cmd.Runtime, *slog.Logger, error) {
	cfg, err := loadConfig(command)
	if err != nil {
		return nil, nil, err
	}

	log.Setup(cfg.LogLevel)
	logger := log.WithModule("research")

	rt, err := cmd.NewRuntime(ctx, logger, cfg, requireQuery)
	if err != nil {
		return nil, nil, err
	}

	return rt, logger, nil
}

func PhaseCommand(phase research.Phase, usage string) *cli.Command {
	var flags []cli.Flag

	switch phase {
	case research.Phase1:
		flags = append(flags, &cli.StringFlag{
			Name:    "entity",
			Usage:   "Lock this idea record instead of the oldest selected one",
			Sources: cli.EnvVars("RESEARCH_ENTITY_ID"),
		})
	case research.Unlock:
		flags = append(flags, &cli.StringFlag{
			Name:  "reason",
			Usage: "Reason recorded in the unlock log entry",
			Value: research.DefaultUnlockReason,
		})
	}

	return &cli.Command{
		Name:  string(phase),
		Usage: usage,
		Flags: flags,
		Action: func(ctx context.Context, command *cli.Command) error {
			rt, _, err := setup(ctx, command, phase == research.Phase2)
			if err != nil {
				return err
			}

			defer func() {
				_ = rt.Close(ctx)
			}()

			outcome, err := rt.Controller.Run(ctx, research.Request{
				Phase:    phase,
				Selector: research.Selector{EntityID: command.String("entity")},
				Reason:   command.String("reason"),
			})
			if err != nil {
				return err
			}

			return printJSON(command.Root().Writer, report(outcome))
		},
	}
}

// report picks what the next actor needs from a phase outcome.
func report(outcome *research.Outcome) any {
	switch outcome.Phase {
	case research.Phase1:
		return outcome.Locked
	case research.Phase2:
		return outcome.Results
	case research.Phase3:
		return outcome.Angles
	case research.Phase4:
		return outcome.Hooks
	default:
		return map[string]any{
			"workflow_id":     outcome.Run.WorkflowID,
			"entity_id":       outcome.Run.EntityID,
			"restored_status": outcome.RestoredStatus,
		}
	}
}

// ValidationReport is printed by the validate command.
type ValidationReport struct {
	Valid   bool       `json:"valid"`
	Errors  []string   `json:"errors"`
	Profile string     `json:"profile"`
	Counts  uif.Counts `json:"counts"`
}

func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Run the UIF gate against a file without touching any store",
		ArgsUsage: "<uif.json>",
		Action: func(_ context.Context, command *cli.Command) error {
			path := command.Args().First()
			if path == "" {
				return errors.New("usage: research validate <uif.json>")
			}

			cfg, err := loadConfig(command)
			if err != nil {
				return err
			}

			profile, err := uif.ParseProfile(cfg.Research.Profile)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			var doc any

			err = json.Unmarshal(data, &doc)
			if err != nil {
				return &research.ValidationError{Errors: []string{"document is not valid JSON: " + err.Error()}}
			}

			result := uif.Validate(doc, uif.WithProfile(profile), uif.WithPillars(cfg.Research.Pillars))

			err = printJSON(command.Root().Writer, ValidationReport{
				Valid:   result.Valid,
				Errors:  result.Errors,
				Profile: string(profile),
				Counts:  uif.Summary(doc),
			})
			if err != nil {
				return err
			}

			if !result.Valid {
				return &research.ValidationError{Errors: result.Errors}
			}

			return nil
		},
	}
}

func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the phases and the UIF gate over HTTP",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Sources: cli.EnvVars("PORT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			rt, logger, err := setup(ctx, command, false)
			if err != nil {
				return err
			}

			defer func() {
				_ = rt.Close(ctx)
			}()

			port := rt.Config.Server.Port
			if command.IsSet("port") {
				port = command.Int("port")
			}

			if rt.Bus != nil {
				err = logEvents(ctx, rt, logger)
				if err != nil {
					return err
				}
			}

			controllerCfg, err := rt.Config.Controller()
			if err != nil {
				return err
			}

			app := web.NewApp(web.NewAPIHandlers(rt.Controller, rt.Records, controllerCfg, logger))

			go func() {
				<-ctx.Done()

				err := app.ShutdownWithContext(context.Background())
				if err != nil {
					logger.Error("Failed to shut down API server", "error", err)
				}
			}()

			logger.InfoContext(ctx, "Starting research API", "port", port)

			return app.Listen(":" + strconv.Itoa(port))
		},
	}
}

// logEvents subscribes to the lifecycle topic and logs every event it sees.
func logEvents(ctx context.Context, rt *cmd.Runtime, logger *slog.Logger) error {
	eventTypes := []events.EventType{
		events.ResearchLockedEvent,
		events.PhaseCompletedEvent,
		events.PhaseFailedEvent,
		events.ResearchUnlockedEvent,
	}

	for _, eventType := range eventTypes {
		err := rt.Bus.Handle(eventType, func(ctx context.Context, event any) error {
			logger.InfoContext(ctx, "Research event", "event_type", eventType, "event", event)

			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to register %s handler: %w", eventType, err)
		}
	}

	err := rt.Bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to research events: %w", err)
	}

	return nil
}

func ReapCommand() *cli.Command {
	return &cli.Command{
		Name:  "reap",
		Usage: "Unlock runs whose lock outlived the max age",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Sweep once and exit instead of running on the schedule",
			},
			&cli.DurationFlag{
				Name:    "max-age",
				Usage:   "Age after which a lock counts as stale",
				Sources: cli.EnvVars("REAPER_MAX_AGE"),
			},
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron schedule of the sweeps",
				Sources: cli.EnvVars("REAPER_SCHEDULE"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			rt, logger, err := setup(ctx, command, false)
			if err != nil {
				return err
			}

			defer func() {
				_ = rt.Close(ctx)
			}()

			maxAge := rt.Config.Reaper.MaxAge
			if command.IsSet("max-age") {
				maxAge = command.Duration("max-age")
			}

			schedule := rt.Config.Reaper.Schedule
			if command.IsSet("schedule") {
				schedule = command.String("schedule")
			}

			r, err := reaper.New(rt.Controller, maxAge, logger)
			if err != nil {
				return err
			}

			if command.Bool("once") {
				reaped, err := r.Sweep(ctx)
				if err != nil {
					return err
				}

				return printJSON(command.Root().Writer, map[string]bool{"reaped": reaped})
			}

			err = r.Start(ctx, schedule)
			if err != nil {
				return err
			}

			<-ctx.Done()
			r.Stop()

			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}
