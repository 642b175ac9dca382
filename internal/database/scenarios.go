package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrScenarioNotFound is returned when no scenario has the requested id.
	ErrScenarioNotFound = errors.New("scenario not found")

	// ErrDuplicateScenario is returned when saving a scenario whose id exists.
	ErrDuplicateScenario = errors.New("scenario already exists")
)

// Scenario is an archived generation: the painted map, the seed it was
// generated with, and the resulting scenario text.
type Scenario struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Fingerprint string    `json:"fingerprint"`
	Seed        int64     `json:"seed"`
	StarCount   int       `json:"star_count"`
	SizeTier    string    `json:"size_tier"`
	MapYAML     string    `json:"-"`
	Body        string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// SaveScenario stores s, assigning an id and timestamp when unset.
func (d *Database) SaveScenario(s *Scenario) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	_, err := d.db.Exec(d.dialect.Rebind(`
		INSERT INTO scenarios (id, name, fingerprint, seed, star_count, size_tier, map_yaml, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		s.ID, s.Name, s.Fingerprint, s.Seed, s.StarCount, s.SizeTier, s.MapYAML, s.Body, s.CreatedAt,
	)
	if err != nil {
		if d.dialect.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateScenario, s.ID)
		}
		return fmt.Errorf("failed to save scenario: %w", err)
	}
	return nil
}

// GetScenario loads a scenario including its map and body.
func (d *Database) GetScenario(id string) (*Scenario, error) {
	s := &Scenario{}
	err := d.db.QueryRow(d.dialect.Rebind(`
		SELECT id, name, fingerprint, seed, star_count, size_tier, map_yaml, body, created_at
		FROM scenarios WHERE id = ?`), id,
	).Scan(&s.ID, &s.Name, &s.Fingerprint, &s.Seed, &s.StarCount, &s.SizeTier, &s.MapYAML, &s.Body, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrScenarioNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}
	return s, nil
}

// ListScenarios returns the newest scenarios first, without map or body.
func (d *Database) ListScenarios(limit int) ([]*Scenario, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.db.Query(d.dialect.Rebind(`
		SELECT id, name, fingerprint, seed, star_count, size_tier, created_at
		FROM scenarios ORDER BY created_at DESC, id LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// FindByFingerprint returns every archived generation of the same map,
// newest first.
func (d *Database) FindByFingerprint(fingerprint string) ([]*Scenario, error) {
	rows, err := d.db.Query(d.dialect.Rebind(`
		SELECT id, name, fingerprint, seed, star_count, size_tier, created_at
		FROM scenarios WHERE fingerprint = ? ORDER BY created_at DESC, id`), fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenarios: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// DeleteScenario removes a scenario.
func (d *Database) DeleteScenario(id string) error {
	res, err := d.db.Exec(d.dialect.Rebind(`DELETE FROM scenarios WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrScenarioNotFound, id)
	}
	return nil
}

func scanSummaries(rows *sql.Rows) ([]*Scenario, error) {
	var out []*Scenario
	for rows.Next() {
		s := &Scenario{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Fingerprint, &s.Seed, &s.StarCount, &s.SizeTier, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// EachScenario calls fn with every archived scenario, oldest first, stopping
// at the first error.
func (d *Database) EachScenario(fn func(*Scenario) error) error {
	rows, err := d.db.Query(`
		SELECT id, name, fingerprint, seed, star_count, size_tier, map_yaml, body, created_at
		FROM scenarios ORDER BY created_at, id`)
	if err != nil {
		return fmt.Errorf("failed to query scenarios: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s := &Scenario{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Fingerprint, &s.Seed, &s.StarCount, &s.SizeTier, &s.MapYAML, &s.Body, &s.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan scenario: %w", err)
		}
		if err := fn(s); err != nil {
			return err
		}
	}
	return rows.Err()
}
