package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mrabdussalam/zakat-calculator-sub003/internal/domain"
)

// stateKey identifies the single calculator blob. The schema allows for
// more than one calculator per database, but the service currently uses one.
const stateKey = "default"

// stateRepository implements domain.StateRepository over a single keyed
// JSON blob with a schema version column.
type stateRepository struct {
	db *DB
}

// NewStateRepository creates the repository and ensures the schema exists.
func NewStateRepository(db *DB) (domain.StateRepository, error) {
	r := &stateRepository{db: db}
	if err := r.initSchema(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *stateRepository) initSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS calculator_state (
			key            TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			payload        TEXT NOT NULL,
			updated_at     TIMESTAMP NOT NULL
		)
	`
	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create calculator_state table: %w", err)
	}
	return nil
}

// Load retrieves the persisted state. A missing row yields a freshly
// initialized state; an older schema version is migrated and backfilled.
func (r *stateRepository) Load(ctx context.Context) (*domain.CalculatorState, error) {
	query := `
		SELECT schema_version, payload
		FROM calculator_state
		WHERE key = ?
	`

	var version int
	var payload string

	err := r.db.QueryRowContext(ctx, query, stateKey).Scan(&version, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewCalculatorState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load calculator state: %w", err)
	}

	var state domain.CalculatorState
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return nil, fmt.Errorf("failed to decode calculator state: %w", err)
	}

	if version < domain.StateVersion {
		zap.L().Info("migrating calculator state",
			zap.Int("from_version", version),
			zap.Int("to_version", domain.StateVersion))
	}
	state.Migrate()
	return &state, nil
}

// Save persists the state, replacing any previous blob.
func (r *stateRepository) Save(ctx context.Context, state *domain.CalculatorState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode calculator state: %w", err)
	}

	query := `
		INSERT INTO calculator_state (key, schema_version, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			schema_version = excluded.schema_version,
			payload        = excluded.payload,
			updated_at     = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, stateKey, state.Version, string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save calculator state: %w", err)
	}
	return nil
}
