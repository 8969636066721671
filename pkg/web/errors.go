package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/metaarchitect/research-engine/pkg/research"
	"github.com/moogar0880/problems"
)

// validationProblem carries the full list of gate violations next to the problem fields.
type validationProblem struct {
	*problems.Problem

	Errors []string `json:"errors"`
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("bad_request").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

func invalidUIF(c fiber.Ctx, errs []string) error {
	problem := validationProblem{
		Problem: problems.NewStatusProblem(422).
			WithInstance(c.Path()).
			WithType("validation").
			WithDetail("UIF validation failed"),
		Errors: errs,
	}

	return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)
}

// statusFor maps an error kind to the HTTP status of its problem response.
func statusFor(kind string) int {
	switch kind {
	case "already_locked":
		return fiber.StatusConflict
	case "missing_input", "precondition":
		return fiber.StatusPreconditionFailed
	case "validation":
		return fiber.StatusUnprocessableEntity
	case "remote":
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// handlePhaseError renders a controller error as a problem typed by its kind.
func handlePhaseError(c fiber.Ctx, err error) error {
	kind := research.Kind(err)
	status := statusFor(kind)

	var validationErr *research.ValidationError
	if kind == "validation" && errors.As(err, &validationErr) {
		return invalidUIF(c, validationErr.Errors)
	}

	problem := problems.NewStatusProblem(status).
		WithInstance(c.Path()).
		WithType(kind).
		WithDetail(err.Error())

	return c.Status(status).JSON(problem)
}
