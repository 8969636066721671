package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/metaarchitect/research-engine/pkg/artifact"
	"github.com/metaarchitect/research-engine/pkg/config"
	"github.com/metaarchitect/research-engine/pkg/eventbus"
	"github.com/metaarchitect/research-engine/pkg/otelhelper"
	"github.com/metaarchitect/research-engine/pkg/persistence"
	"github.com/metaarchitect/research-engine/pkg/research"
)

const serviceName = "research"

// Runtime holds the wired collaborators of one process.
type Runtime struct {
	Config     config.Config
	Records    persistence.Persistence
	Artifacts  artifact.Store
	Bus        eventbus.EventBus // nil when events are disabled
	Controller *research.Controller

	shutdown otelhelper.ShutdownFunc
	logger   *slog.Logger
}

// NewRuntime validates cfg and opens every backend it names. requireQuery makes a missing
// query service API key an error.
func NewRuntime(ctx context.Context, logger *slog.Logger, cfg config.Config, requireQuery bool) (*Runtime, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	controllerCfg, err := cfg.Controller()
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Config: cfg, logger: logger}

	queries, err := NewQueryClient(logger, cfg.Query, requireQuery)
	if err != nil {
		return nil, err
	}

	rt.Records, err = NewPersistence(ctx, logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}

	rt.Artifacts, err = NewArtifactStore(ctx, logger, cfg.Artifacts)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to open artifact store: %w", err), rt.Close(ctx))
	}

	rt.Bus, err = NewEventBus(logger, cfg.EventBus, serviceName)
	if err != nil {
		return nil, errors.Join(err, rt.Close(ctx))
	}

	var opts []research.Option

	if rt.Bus != nil {
		opts = append(opts, research.WithPublisher(rt.Bus))
	}

	if cfg.Tracing {
		tracer, shutdown, err := otelhelper.NewTracer(ctx, serviceName)
		if err != nil {
			return nil, errors.Join(err, rt.Close(ctx))
		}

		rt.shutdown = shutdown
		opts = append(opts, research.WithTracer(tracer))
	}

	rt.Controller = research.NewController(controllerCfg, rt.Records, rt.Artifacts, queries, logger, opts...)

	return rt, nil
}

// Close releases everything NewRuntime opened.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error

	if r.shutdown != nil {
		errs = append(errs, r.shutdown(ctx))
	}

	if r.Bus != nil {
		errs = append(errs, r.Bus.Close())
	}

	if r.Artifacts != nil {
		errs = append(errs, r.Artifacts.Close(ctx))
	}

	if r.Records != nil {
		errs = append(errs, r.Records.Close(ctx))
	}

	err := errors.Join(errs...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to close runtime", "error", err)
	}

	return err
}
