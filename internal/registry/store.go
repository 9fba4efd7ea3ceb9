// Package registry persists evaluation records and decides model admission.
// The store doubles as the lineage source for tree scoring: a parent model's
// recorded net score is looked up here.
package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/scoring"
)

// StoredEvaluation is one persisted evaluation row.
type StoredEvaluation struct {
	ID        string         `json:"id"`
	ModelName string         `json:"model_name"`
	NetScore  float64        `json:"net_score"`
	Admitted  bool           `json:"admitted"`
	Record    scoring.Record `json:"record"`
	CreatedAt time.Time      `json:"created_at"`
}

// Store persists evaluations in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (and migrates) the evaluation database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "model_trust_o_meter.db")
	connStr := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("Evaluation store initialized", "path", dbPath)

	return s, nil
}

func (s *Store) migrate() error {
	query := `CREATE TABLE IF NOT EXISTS evaluations (
		id TEXT PRIMARY KEY,
		model_name TEXT NOT NULL,
		net_score REAL NOT NULL,
		admitted INTEGER NOT NULL,
		record TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_evaluations_model_name ON evaluations(model_name);
	CREATE INDEX IF NOT EXISTS idx_evaluations_created_at ON evaluations(created_at);`

	_, err := s.db.Exec(query)
	return err
}

// Save persists one evaluation and its admission decision.
func (s *Store) Save(ctx context.Context, record scoring.Record, admitted bool) (*StoredEvaluation, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	eval := &StoredEvaluation{
		ID:        uuid.New().String(),
		ModelName: record.Name,
		NetScore:  record.NetScore,
		Admitted:  admitted,
		Record:    record,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO evaluations (id, model_name, net_score, admitted, record, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		eval.ID, eval.ModelName, eval.NetScore, eval.Admitted, string(payload), eval.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert evaluation: %w", err)
	}

	return eval, nil
}

// Recent returns the most recent evaluations, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]StoredEvaluation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, model_name, net_score, admitted, record, created_at
		 FROM evaluations ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluations: %w", err)
	}
	defer rows.Close()

	var evals []StoredEvaluation
	for rows.Next() {
		var eval StoredEvaluation
		var payload string
		if err := rows.Scan(&eval.ID, &eval.ModelName, &eval.NetScore, &eval.Admitted, &payload, &eval.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &eval.Record); err != nil {
			slog.Warn("Skipping evaluation with unreadable record", "id", eval.ID, "error", err)
			continue
		}
		evals = append(evals, eval)
	}

	return evals, rows.Err()
}

// ParentNetScores returns the latest recorded net score for each parent model
// that has been evaluated before. Unknown parents are skipped.
func (s *Store) ParentNetScores(ctx context.Context, parentIDs []string) []float64 {
	var scores []float64
	for _, id := range parentIDs {
		name := modelNameOf(id)

		var score float64
		err := s.db.QueryRowContext(ctx,
			`SELECT net_score FROM evaluations WHERE model_name = ?
			 ORDER BY created_at DESC LIMIT 1`, name).Scan(&score)
		if err != nil {
			if err != sql.ErrNoRows {
				slog.Warn("Lineage lookup failed", "model", name, "error", err)
			}
			continue
		}
		scores = append(scores, score)
	}
	return scores
}

// modelNameOf reduces a parent model ID like "google/bert-base" to the bare
// model name used as the record's Name field.
func modelNameOf(id string) string {
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == '/' {
			return id[i+1:]
		}
	}
	return id
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Stats returns store statistics.
func (s *Store) Stats(ctx context.Context) map[string]interface{} {
	var total, admitted int64
	_ = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluations`).Scan(&total)
	_ = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluations WHERE admitted = 1`).Scan(&admitted)

	poolStats := s.db.Stats()

	return map[string]interface{}{
		"total_evaluations":    total,
		"admitted_evaluations": admitted,
		"open_connections":     poolStats.OpenConnections,
		"in_use":               poolStats.InUse,
		"idle":                 poolStats.Idle,
	}
}
