package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/machines/internal/model"
)

type DefinitionStore struct {
	db DB
}

func NewDefinitionStore(db DB) *DefinitionStore {
	return &DefinitionStore{db: db}
}

// Get returns the definition for the challenge, or nil when there is none.
func (s *DefinitionStore) Get(ctx context.Context, challengeID int64) (*model.MachineDefinition, error) {
	var d model.MachineDefinition
	err := s.db.QueryRow(ctx,
		`SELECT challenge_id, slug, duration_minutes, config, created_at, updated_at
		 FROM machine_definitions WHERE challenge_id = $1`, challengeID,
	).Scan(&d.ChallengeID, &d.Slug, &d.DurationMinutes, &d.Config, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get machine definition %d: %w", challengeID, err)
	}
	return &d, nil
}

func (s *DefinitionStore) Create(ctx context.Context, d *model.MachineDefinition) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO machine_definitions (challenge_id, slug, duration_minutes, config, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ChallengeID, d.Slug, d.DurationMinutes, d.Config, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create machine definition %d: %w", d.ChallengeID, err)
	}
	return nil
}

func (s *DefinitionStore) Update(ctx context.Context, d *model.MachineDefinition) error {
	_, err := s.db.Exec(ctx,
		`UPDATE machine_definitions SET duration_minutes = $1, config = $2, updated_at = $3
		 WHERE challenge_id = $4`,
		d.DurationMinutes, d.Config, d.UpdatedAt, d.ChallengeID,
	)
	if err != nil {
		return fmt.Errorf("update machine definition %d: %w", d.ChallengeID, err)
	}
	return nil
}

func (s *DefinitionStore) Delete(ctx context.Context, challengeID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM machine_definitions WHERE challenge_id = $1`, challengeID)
	if err != nil {
		return fmt.Errorf("delete machine definition %d: %w", challengeID, err)
	}
	return nil
}

// List returns every definition ordered by challenge.
func (s *DefinitionStore) List(ctx context.Context) ([]model.MachineDefinition, error) {
	rows, err := s.db.Query(ctx,
		`SELECT challenge_id, slug, duration_minutes, config, created_at, updated_at
		 FROM machine_definitions ORDER BY challenge_id`)
	if err != nil {
		return nil, fmt.Errorf("list machine definitions: %w", err)
	}
	defer rows.Close()

	var defs []model.MachineDefinition
	for rows.Next() {
		var d model.MachineDefinition
		if err := rows.Scan(&d.ChallengeID, &d.Slug, &d.DurationMinutes, &d.Config, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan machine definition: %w", err)
		}
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate machine definitions: %w", err)
	}
	return defs, nil
}
