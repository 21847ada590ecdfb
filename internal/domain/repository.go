package domain

import "context"

// ExecutionRepository stores uploaded executions.
type ExecutionRepository interface {
	// Save persists a single execution.
	Save(ctx context.Context, exec Execution) error

	// SaveBatch persists several executions at once. It is used when
	// draining the WAL, so implementations must tolerate executions that
	// were already saved.
	SaveBatch(ctx context.Context, execs []Execution) error

	// Get loads an execution by id. It returns ErrExecutionNotFound when no
	// execution has that id.
	Get(ctx context.Context, id string) (Execution, error)
}

// ViewCache caches rendered views keyed by an opaque string.
type ViewCache interface {
	// Get returns ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// APIKeyRepository defines the interface for validating API keys.
type APIKeyRepository interface {
	// IsValid checks if the provided API key is valid and active.
	// Implementations should handle caching to reduce database load.
	IsValid(ctx context.Context, key string) (bool, error)
}

// WALRepository keeps executions on local disk while the database is
// unavailable.
type WALRepository interface {
	// Write appends an execution to the current WAL segment.
	Write(ctx context.Context, exec Execution) error

	// Replay reads every execution from the WAL and sends it to handler.
	Replay(ctx context.Context, handler func(exec Execution) error) error

	// Truncate removes WAL segments that have been successfully replayed.
	Truncate(ctx context.Context) error
}
