package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

// ToolExecution is one audited tool call made during an orchestrator pass.
type ToolExecution struct {
	ID         string    `db:"id"`
	PassID     string    `db:"pass_id"`
	ToolName   string    `db:"tool_name"`
	Input      string    `db:"input"`
	Output     string    `db:"output"`
	Error      string    `db:"error"`
	Cached     bool      `db:"cached"`
	DurationMs int64     `db:"duration_ms"`
	CreatedAt  time.Time `db:"created_at"`
}

// RecordToolExecution stores an audit row, filling ID and CreatedAt when unset.
func (d *DB) RecordToolExecution(ctx context.Context, execution *ToolExecution) error {
	return CreateToolExecution(ctx, d.db, execution)
}

// CreateToolExecution creates a new tool execution record in the database
func CreateToolExecution(ctx context.Context, db Execer, execution *ToolExecution) error {
	if execution.ID == "" {
		execution.ID = uuid.New().String()
	}
	if execution.CreatedAt.IsZero() {
		execution.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO tool_executions (id, pass_id, tool_name, input, output, error, cached, duration_ms, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		execution.ID,
		execution.PassID,
		execution.ToolName,
		execution.Input,
		execution.Output,
		execution.Error,
		execution.Cached,
		execution.DurationMs,
		execution.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record tool execution: %w", err)
	}
	return nil
}

// ListToolExecutions returns the audit rows of a pass in the order they were recorded.
func (d *DB) ListToolExecutions(ctx context.Context, passID string) ([]ToolExecution, error) {
	query := `SELECT id, pass_id, tool_name, input, output, error, cached, duration_ms, created_at FROM tool_executions WHERE pass_id = ? ORDER BY rowid`
	var executions []ToolExecution
	if err := sqlscan.Select(ctx, d.db, &executions, query, passID); err != nil {
		return nil, fmt.Errorf("failed to list tool executions: %w", err)
	}
	return executions, nil
}
