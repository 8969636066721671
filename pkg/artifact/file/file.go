// Package file stores artifacts as JSON files under a root directory.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/metaarchitect/research-engine/pkg/artifact"
)

// Store keeps one <name>.json file per artifact.
type Store struct {
	root string
}

// NewStore creates a file artifact store. A file:// prefix on root is accepted.
func NewStore(root string) *Store {
	return &Store{root: strings.Replace(root, "file://", "", 1)}
}

// Root is the directory holding the artifacts.
func (s *Store) Root() string {
	return s.root
}

// Put writes v through a temporary file and renames it into place.
func (s *Store) Put(_ context.Context, name artifact.Name, v any) error {
	filePath, err := s.path(name)
	if err != nil {
		return err
	}

	err = os.MkdirAll(s.root, 0750)
	if err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.root, "."+string(name)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for artifact %s: %w", name, err)
	}

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}

	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write artifact %s: %w", name, err)
	}

	err = os.Rename(tmp.Name(), filePath)
	if err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to replace artifact %s: %w", name, err)
	}

	return nil
}

func (s *Store) Get(_ context.Context, name artifact.Name, v any) error {
	filePath, err := s.path(name)
	if err != nil {
		return err
	}

	body, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", name, artifact.ErrNotFound)
		}

		return fmt.Errorf("failed to read artifact %s: %w", name, err)
	}

	err = json.Unmarshal(body, v)
	if err != nil {
		return fmt.Errorf("failed to unmarshal artifact %s: %w", name, err)
	}

	return nil
}

func (s *Store) Exists(_ context.Context, name artifact.Name) (bool, error) {
	filePath, err := s.path(name)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("failed to stat artifact %s: %w", name, err)
	}

	return true, nil
}

// Delete removes the artifact. Removing a missing artifact is not an error.
func (s *Store) Delete(_ context.Context, name artifact.Name) error {
	filePath, err := s.path(name)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete artifact %s: %w", name, err)
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}

func (s *Store) path(name artifact.Name) (string, error) {
	err := artifact.ValidateName(name)
	if err != nil {
		return "", fmt.Errorf("%q: %w", name, err)
	}

	return filepath.Join(s.root, string(name)+".json"), nil
}
