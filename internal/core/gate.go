package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/machines/internal/model"
)

// AccessGate decides whether a principal may start a machine on a
// challenge, based on the CTF platform's own tables.
type AccessGate struct {
	db DB
}

func NewAccessGate(db DB) *AccessGate {
	return &AccessGate{db: db}
}

// challengeRequirements is the platform's JSON requirements column, e.g.
// {"prerequisites": [2, 3], "anonymize": false}.
type challengeRequirements struct {
	Prerequisites []int64 `json:"prerequisites"`
}

// Check returns nil when p may start a machine on the challenge.
// Administrators bypass every check except challenge existence.
func (g *AccessGate) Check(ctx context.Context, p *model.Principal, challengeID int64) error {
	if p == nil {
		return ErrAuthRequired
	}

	var state string
	var rawRequirements []byte
	err := g.db.QueryRow(ctx,
		`SELECT state, requirements FROM challenges WHERE id = $1`, challengeID,
	).Scan(&state, &rawRequirements)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get challenge %d: %w", challengeID, err)
	}
	if p.Admin {
		return nil
	}

	var paused bool
	if err := g.db.QueryRow(ctx, `SELECT paused FROM ctf_settings LIMIT 1`).Scan(&paused); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("get ctf settings: %w", err)
	}
	if paused {
		return ErrPaused
	}

	switch state {
	case "hidden":
		return ErrNotFound
	case "locked":
		return ErrLocked
	}

	var req challengeRequirements
	if len(rawRequirements) > 0 {
		if err := json.Unmarshal(rawRequirements, &req); err != nil {
			return fmt.Errorf("decode requirements of challenge %d: %w", challengeID, err)
		}
	}
	requirements := req.Prerequisites
	if len(requirements) == 0 {
		return nil
	}
	var solved int
	err = g.db.QueryRow(ctx,
		`SELECT count(DISTINCT challenge_id) FROM solves WHERE user_id = $1 AND challenge_id = ANY($2)`,
		p.UserID, requirements,
	).Scan(&solved)
	if err != nil {
		return fmt.Errorf("count solves for user %d: %w", p.UserID, err)
	}
	if solved < len(uniqueIDs(requirements)) {
		return ErrPrereqsUnmet
	}
	return nil
}

func uniqueIDs(ids []int64) map[int64]struct{} {
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
