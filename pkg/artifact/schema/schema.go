// Package schema checks externally authored artifacts against embedded JSON schemas.
package schema

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/metaarchitect/research-engine/pkg/artifact"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var files embed.FS

var (
	// ErrInvalidDocument indicates the artifact does not match its schema.
	ErrInvalidDocument = errors.New("artifact does not match schema")

	// ErrNoSchema indicates no schema is registered for the artifact.
	ErrNoSchema = errors.New("no schema for artifact")
)

var (
	loadOnce sync.Once
	compiled map[artifact.Name]*gojsonschema.Schema
	loadErr  error
)

// Has reports whether name has a registered schema.
func Has(name artifact.Name) bool {
	_, err := files.ReadFile(schemaPath(name))

	return err == nil
}

// Validate checks a decoded JSON document against the schema registered for name.
func Validate(name artifact.Name, doc any) error {
	return validate(name, gojsonschema.NewGoLoader(doc))
}

// ValidateBytes checks raw JSON against the schema registered for name.
func ValidateBytes(name artifact.Name, data []byte) error {
	return validate(name, gojsonschema.NewBytesLoader(data))
}

func validate(name artifact.Name, document gojsonschema.JSONLoader) error {
	loadOnce.Do(load)

	if loadErr != nil {
		return loadErr
	}

	schema, ok := compiled[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrNoSchema)
	}

	result, err := schema.Validate(document)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", name, ErrInvalidDocument, err)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, resultErr := range result.Errors() {
			messages = append(messages, resultErr.String())
		}

		return fmt.Errorf("%s: %w: %s", name, ErrInvalidDocument, strings.Join(messages, "; "))
	}

	return nil
}

func load() {
	compiled = make(map[artifact.Name]*gojsonschema.Schema)

	for _, name := range []artifact.Name{artifact.Queries, artifact.Hooks} {
		data, err := files.ReadFile(schemaPath(name))
		if err != nil {
			loadErr = fmt.Errorf("failed to read schema %s: %w", name, err)

			return
		}

		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			loadErr = fmt.Errorf("failed to compile schema %s: %w", name, err)

			return
		}

		compiled[name] = schema
	}
}

func schemaPath(name artifact.Name) string {
	return "schemas/" + string(name) + ".json"
}
