package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/V4T54L/causeway/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const stagingTable = "executions_import"

// ExecutionRepository implements domain.ExecutionRepository on PostgreSQL.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger.With("component", "execution_repository")}
}

func (r *ExecutionRepository) Save(ctx context.Context, exec domain.Execution) error {
	query := `
		INSERT INTO executions (id, name, lines, hosts, node_count, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query,
		exec.ID, exec.Name, pq.Array(exec.Lines), pq.Array(exec.Hosts), exec.NodeCount, exec.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert execution %s: %w", exec.ID, err)
	}
	return nil
}

// SaveBatch stages the executions with COPY and merges them in one
// transaction. Executions already stored are left untouched.
func (r *ExecutionRepository) SaveBatch(ctx context.Context, execs []domain.Execution) error {
	if len(execs) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer txn.Rollback()

	_, err = txn.ExecContext(ctx, `CREATE TEMP TABLE `+stagingTable+` (LIKE executions INCLUDING DEFAULTS) ON COMMIT DROP`)
	if err != nil {
		return fmt.Errorf("create staging table: %w", err)
	}

	stmt, err := txn.PrepareContext(ctx, pq.CopyIn(stagingTable, "id", "name", "lines", "hosts", "node_count", "uploaded_at"))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}
	for _, e := range execs {
		if _, err := stmt.ExecContext(ctx, e.ID, e.Name, pq.Array(e.Lines), pq.Array(e.Hosts), e.NodeCount, e.UploadedAt); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("copy execution %s: %w", e.ID, err)
		}
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("flush copy: %w", err)
	}

	merge := `
		INSERT INTO executions (id, name, lines, hosts, node_count, uploaded_at)
		SELECT id, name, lines, hosts, node_count, uploaded_at FROM ` + stagingTable + `
		ON CONFLICT (id) DO NOTHING`
	res, err := txn.ExecContext(ctx, merge)
	if err != nil {
		return fmt.Errorf("merge staged executions: %w", err)
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && int(n) < len(execs) {
		r.logger.Info("skipped executions already stored", "skipped", len(execs)-int(n))
	}
	return nil
}

func (r *ExecutionRepository) Get(ctx context.Context, id string) (domain.Execution, error) {
	// ids are UUIDs; anything else cannot be stored
	if _, err := uuid.Parse(id); err != nil {
		return domain.Execution{}, domain.ErrExecutionNotFound
	}
	query := `SELECT id, name, lines, hosts, node_count, uploaded_at FROM executions WHERE id = $1`
	var e domain.Execution
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Name, pq.Array(&e.Lines), pq.Array(&e.Hosts), &e.NodeCount, &e.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Execution{}, domain.ErrExecutionNotFound
	}
	if err != nil {
		return domain.Execution{}, fmt.Errorf("load execution %s: %w", id, err)
	}
	return e, nil
}
