package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/metaarchitect/research-engine/pkg/artifact"
	"github.com/metaarchitect/research-engine/pkg/artifact/schema"
	"github.com/metaarchitect/research-engine/pkg/models"
)

// Producer supplies the content authored outside the controller: research queries, the UIF
// candidate and hook drafts. The controller never fabricates any of them.
type Producer interface {
	Queries(ctx context.Context, run *models.WorkflowRun) ([]models.Query, error)
	UIF(ctx context.Context, run *models.WorkflowRun, results *models.ResultsDocument) (map[string]any, error)
	Hooks(ctx context.Context, run *models.WorkflowRun, angles []models.AngleDigest) ([]models.HookDraft, error)
}

// ArtifactProducer reads what external authors wrote to the artifact store.
type ArtifactProducer struct {
	artifacts artifact.Store
	validate  *validator.Validate
}

// NewArtifactProducer creates a producer backed by the artifact store.
func NewArtifactProducer(artifacts artifact.Store) *ArtifactProducer {
	return &ArtifactProducer{
		artifacts: artifacts,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (p *ArtifactProducer) Queries(ctx context.Context, _ *models.WorkflowRun) ([]models.Query, error) {
	var doc models.QueriesDocument

	err := p.read(ctx, Phase2, artifact.Queries, &doc)
	if err != nil {
		return nil, err
	}

	return doc.Queries, nil
}

func (p *ArtifactProducer) UIF(ctx context.Context, _ *models.WorkflowRun, _ *models.ResultsDocument) (map[string]any, error) {
	var candidate map[string]any

	err := p.artifacts.Get(ctx, artifact.UIF, &candidate)
	if err != nil {
		return nil, artifactError(Phase3, artifact.UIF, err)
	}

	if candidate == nil {
		return nil, &PreconditionError{Phase: Phase3, Reason: "uif artifact is not a JSON object"}
	}

	return candidate, nil
}

func (p *ArtifactProducer) Hooks(ctx context.Context, _ *models.WorkflowRun, _ []models.AngleDigest) ([]models.HookDraft, error) {
	var doc models.HooksDocument

	err := p.read(ctx, Phase4, artifact.Hooks, &doc)
	if err != nil {
		return nil, err
	}

	return doc.Hooks, nil
}

// read loads an authored artifact, checks it against its JSON schema, then decodes and
// validates the typed document.
func (p *ArtifactProducer) read(ctx context.Context, phase Phase, name artifact.Name, out any) error {
	var raw json.RawMessage

	err := p.artifacts.Get(ctx, name, &raw)
	if err != nil {
		return artifactError(phase, name, err)
	}

	err = schema.ValidateBytes(name, raw)
	if err != nil {
		return &PreconditionError{Phase: phase, Reason: fmt.Sprintf("%s artifact is malformed", name), Err: err}
	}

	err = json.Unmarshal(raw, out)
	if err != nil {
		return &PreconditionError{Phase: phase, Reason: fmt.Sprintf("%s artifact is malformed", name), Err: err}
	}

	err = p.validate.Struct(out)
	if err != nil {
		return &PreconditionError{Phase: phase, Reason: fmt.Sprintf("%s artifact is incomplete", name), Err: err}
	}

	return nil
}

func artifactError(phase Phase, name artifact.Name, err error) error {
	if errors.Is(err, artifact.ErrNotFound) {
		return &MissingInputError{Input: string(name) + " artifact", Err: err}
	}

	return &PreconditionError{Phase: phase, Reason: fmt.Sprintf("cannot read %s artifact", name), Err: err}
}
