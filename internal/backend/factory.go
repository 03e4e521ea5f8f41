package backend

import (
	"fmt"
	"log/slog"

	"tally/internal/memory"
	"tally/internal/storage"
)

// Factory creates backends from configuration.
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a backend factory.
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the record store named by config.Type.
func (f *Factory) Create(config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite repository: %w", err)
		}
		f.logger.Info("Initialized sqlite backend", "db_path", config.SQLiteDBPath)
		return &Result{Backend: repo, Cleanup: repo.Close}, nil

	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return &Result{Backend: memory.New(), Cleanup: nil}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
