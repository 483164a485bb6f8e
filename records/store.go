// Package records loads structured reference data (e.g. a verified
// student roster) used as read-only prompt context.
package records

import (
	"context"
	"encoding/json"
	"os"

	"go.uber.org/zap"

	"github.com/campusrag/campusrag/types"
)

// Store loads the structured dataset. Implementations read fresh on
// every call: record data changes out-of-band and staleness is worse
// than the extra read.
type Store interface {
	// Load returns the dataset as a nested mapping. A missing or
	// malformed backing store yields an empty map together with a
	// typed error the caller may log; the empty map is always safe
	// to use.
	Load(ctx context.Context) (map[string]any, error)
}

// FileStore reads records from a single JSON file.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a store over the given JSON file path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{
		path:   path,
		logger: logger.With(zap.String("component", "record_store")),
	}
}

func (s *FileStore) Load(ctx context.Context) (map[string]any, error) {
	empty := map[string]any{}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return empty, types.NewError(types.ErrRecordStoreUnreadable, "record file missing: "+s.path).WithCause(err)
		}
		return empty, types.NewError(types.ErrRecordStoreUnreadable, "record file unreadable: "+s.path).WithCause(err)
	}

	// The backing file may hold either an object or an array of
	// records. Arrays are wrapped under a "records" key so callers
	// always get a mapping.
	var asMap map[string]any
	if err := json.Unmarshal(raw, &asMap); err == nil {
		return asMap, nil
	}

	var asList []any
	if err := json.Unmarshal(raw, &asList); err == nil {
		return map[string]any{"records": asList}, nil
	}

	return empty, types.NewError(types.ErrRecordStoreUnreadable, "record file malformed: "+s.path)
}

var _ Store = (*FileStore)(nil)
