// Package artifact publishes finished bundles to a run-keyed artifact store.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store persists the files of one published bundle under a run id.
type Store interface {
	Put(ctx context.Context, runID, path string, content []byte) error
	Get(ctx context.Context, runID, path string) ([]byte, error)
	List(ctx context.Context, runID string) ([]string, error)
}

var ErrNotFound = errors.New("artifact not found")

// normalizeKey trims both parts and rejects blanks.
func normalizeKey(runID, path string) (string, string, error) {
	runID = strings.TrimSpace(runID)
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if runID == "" {
		return "", "", fmt.Errorf("run_id is required")
	}
	if path == "" {
		return "", "", fmt.Errorf("path is required")
	}
	return runID, path, nil
}

func objectKey(runID, path string) string {
	return runID + "/" + path
}
