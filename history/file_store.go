package history

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campusrag/campusrag/types"
)

// FileStore keeps all users' turns in one JSON file, a map of user ID
// to turn list. Writes rewrite the whole file under a single mutex,
// which is fine at the interaction rates this log sees.
type FileStore struct {
	path   string
	logger *zap.Logger

	mu sync.Mutex
}

// NewFileStore creates a file-backed history store.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{
		path:   path,
		logger: logger.With(zap.String("component", "history_file")),
	}
}

// load tolerates a missing, empty, or corrupt file by starting over
// with an empty map. History is a convenience log, not a ledger.
func (s *FileStore) load() map[string][]Turn {
	raw, err := os.ReadFile(s.path)
	if err != nil || len(strings.TrimSpace(string(raw))) == 0 {
		return map[string][]Turn{}
	}

	var memory map[string][]Turn
	if err := json.Unmarshal(raw, &memory); err != nil {
		s.logger.Warn("history file corrupt, starting fresh", zap.Error(err))
		return map[string][]Turn{}
	}
	return memory
}

func (s *FileStore) save(memory map[string][]Turn) error {
	data, err := json.MarshalIndent(memory, "", "  ")
	if err != nil {
		return types.NewError(types.ErrHistoryWriteFailure, "failed to encode history").WithCause(err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return types.NewError(types.ErrHistoryWriteFailure, "failed to write history file").WithCause(err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return types.NewError(types.ErrHistoryWriteFailure, "failed to replace history file").WithCause(err)
	}
	return nil
}

func (s *FileStore) Append(ctx context.Context, userID string, turn Turn) error {
	if turn.AskedAt.IsZero() {
		turn.AskedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	memory := s.load()
	memory[userID] = append(memory[userID], turn)
	return s.save(memory)
}

func (s *FileStore) History(ctx context.Context, userID string) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.load()[userID]
	if turns == nil {
		return []Turn{}, nil
	}
	return turns, nil
}

func (s *FileStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	memory := s.load()
	if _, ok := memory[userID]; !ok {
		return nil
	}
	// Empty the turn list but keep the key.
	memory[userID] = []Turn{}
	return s.save(memory)
}

var _ Store = (*FileStore)(nil)
