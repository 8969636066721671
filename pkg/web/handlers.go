// Package web exposes the research controller over HTTP.
package web

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/metaarchitect/research-engine/pkg/artifact"
	"github.com/metaarchitect/research-engine/pkg/persistence"
	"github.com/metaarchitect/research-engine/pkg/research"
	"github.com/metaarchitect/research-engine/pkg/uif"
)

type APIHandlers struct {
	controller *research.Controller
	records    persistence.Persistence
	cfg        research.Config
	validator  *validator.Validate
	logger     *slog.Logger
}

func NewAPIHandlers(
	controller *research.Controller,
	records persistence.Persistence,
	cfg research.Config,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		controller: controller,
		records:    records,
		cfg:        cfg,
		validator:  validator.New(validator.WithRequiredStructEnabled()),
		logger:     logger.With("module", "web"),
	}
}

// Ready reports whether the record store answers.
func (h *APIHandlers) Ready(c fiber.Ctx) error {
	status := "healthy"
	httpStatus := fiber.StatusOK
	check := "ok"

	err := h.records.HealthCheck(c.Context())
	if err != nil {
		status = "unhealthy"
		httpStatus = fiber.StatusServiceUnavailable
		check = err.Error()
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"records": check,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetRun(c fiber.Ctx) error {
	run, err := h.controller.CurrentRun(c.Context())
	if err != nil {
		if artifact.IsNotFound(err) {
			return notFound(c, "no research run is open")
		}

		return internalError(c, err)
	}

	return c.JSON(run)
}

func (h *APIHandlers) ValidateUIF(c fiber.Ctx) error {
	profile, err := uif.ParseProfile(c.Query("profile", string(h.cfg.Profile)))
	if err != nil {
		return badRequest(c, err.Error())
	}

	var doc any

	err = json.Unmarshal(c.Body(), &doc)
	if err != nil {
		return badRequest(c, "Invalid JSON body: "+err.Error())
	}

	result := uif.Validate(doc, uif.WithProfile(profile), uif.WithPillars(h.cfg.Pillars))
	if !result.Valid {
		return invalidUIF(c, result.Errors)
	}

	return c.JSON(ValidationResponse{
		Valid:   true,
		Errors:  []string{},
		Profile: string(profile),
		Counts:  uif.Summary(doc),
	})
}

func (h *APIHandlers) RunPhase(c fiber.Ctx) error {
	phase, ok := research.ParsePhase(c.Params("phase"))
	if !ok {
		return notFound(c, "unknown phase "+c.Params("phase"))
	}

	var req PhaseRequest

	if len(c.Body()) > 0 {
		err := c.Bind().JSON(&req)
		if err != nil {
			return badRequest(c, "Invalid request body: "+err.Error())
		}

		err = h.validator.Struct(req)
		if err != nil {
			return badRequest(c, "Validation failed: "+err.Error())
		}
	}

	outcome, err := h.controller.Run(c.Context(), research.Request{
		Phase:    phase,
		Selector: research.Selector{EntityID: req.EntityID},
		Reason:   req.Reason,
	})
	if err != nil {
		h.logger.WarnContext(c.Context(), "Phase request failed", "phase", phase, "kind", research.Kind(err))

		return handlePhaseError(c, err)
	}

	return c.JSON(outcome)
}
