package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/edvin/machines/internal/model"
)

const machineColumns = `id, user_id, challenge_id, task_arn, status, started_at, expires_at, detail, updated_at`

// MachineStore is the PostgreSQL implementation of the machine record store.
type MachineStore struct {
	db DB
}

func NewMachineStore(db DB) *MachineStore {
	return &MachineStore{db: db}
}

func (s *MachineStore) CountActiveByUser(ctx context.Context, userID int64, now time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM machines WHERE user_id = $1 AND status = $2 AND expires_at > $3`,
		userID, model.MachineRunning, now,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active machines for user %d: %w", userID, err)
	}
	return n, nil
}

// InsertGuarded re-checks the active count under a per-user advisory lock
// and inserts m in the same transaction.
func (s *MachineStore) InsertGuarded(ctx context.Context, m *model.Machine, limit int) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin insert machine: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended('machine-user:' || $1::text, 0))`, m.UserID,
	); err != nil {
		return false, fmt.Errorf("lock machines of user %d: %w", m.UserID, err)
	}

	var n int
	err = tx.QueryRow(ctx,
		`SELECT count(*) FROM machines WHERE user_id = $1 AND status = $2 AND expires_at > $3`,
		m.UserID, model.MachineRunning, m.StartedAt,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count active machines for user %d: %w", m.UserID, err)
	}
	if n >= limit {
		return false, nil
	}

	if err := insertMachine(ctx, tx, m); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit machine %s: %w", m.ID, err)
	}
	return true, nil
}

func (s *MachineStore) Insert(ctx context.Context, m *model.Machine) error {
	return insertMachine(ctx, s.db, m)
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func insertMachine(ctx context.Context, db execer, m *model.Machine) error {
	detail, err := json.Marshal(m.Detail)
	if err != nil {
		return fmt.Errorf("encode machine detail: %w", err)
	}
	_, err = db.Exec(ctx,
		`INSERT INTO machines (`+machineColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.UserID, m.ChallengeID, m.TaskArn, m.Status, m.StartedAt, m.ExpiresAt, detail, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert machine %s: %w", m.ID, err)
	}
	return nil
}

// FindRunning returns the most recently started running machine for the
// pair, or nil when there is none.
func (s *MachineStore) FindRunning(ctx context.Context, userID, challengeID int64) (*model.Machine, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+machineColumns+` FROM machines
		 WHERE user_id = $1 AND challenge_id = $2 AND status = $3
		 ORDER BY started_at DESC LIMIT 1`,
		userID, challengeID, model.MachineRunning,
	)
	m, err := scanMachine(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find running machine for user %d challenge %d: %w", userID, challengeID, err)
	}
	return m, nil
}

func (s *MachineStore) ExistsForPair(ctx context.Context, userID, challengeID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM machines WHERE user_id = $1 AND challenge_id = $2)`,
		userID, challengeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check machines for user %d challenge %d: %w", userID, challengeID, err)
	}
	return exists, nil
}

func (s *MachineStore) ListRunning(ctx context.Context, filter model.MachineFilter) ([]model.Machine, error) {
	running := model.MachineRunning
	filter.Status = &running
	where, args := filterClause(filter)
	return s.list(ctx, "list running machines",
		`SELECT `+machineColumns+` FROM machines`+where+` ORDER BY started_at, id`, args...)
}

func (s *MachineStore) ListRunningByIDs(ctx context.Context, ids []string) ([]model.Machine, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.list(ctx, "list machines by id",
		`SELECT `+machineColumns+` FROM machines
		 WHERE id = ANY($1) AND status = $2 ORDER BY started_at, id`,
		ids, model.MachineRunning)
}

func (s *MachineStore) ListExpired(ctx context.Context, now time.Time) ([]model.Machine, error) {
	return s.list(ctx, "list expired machines",
		`SELECT `+machineColumns+` FROM machines
		 WHERE status = $1 AND expires_at <= $2 ORDER BY expires_at, id`,
		model.MachineRunning, now)
}

func (s *MachineStore) ListByStatus(ctx context.Context, status model.MachineStatus) ([]model.Machine, error) {
	return s.list(ctx, "list machines by status",
		`SELECT `+machineColumns+` FROM machines WHERE status = $1 ORDER BY updated_at, id`,
		status)
}

func (s *MachineStore) UpdateDetail(ctx context.Context, id string, detail model.Detail) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("encode machine detail: %w", err)
	}
	_, err = s.db.Exec(ctx,
		`UPDATE machines SET detail = $1, updated_at = now() WHERE id = $2`, data, id)
	if err != nil {
		return fmt.Errorf("update machine %s detail: %w", id, err)
	}
	return nil
}

// UpdateStatus sets the machine status, and the expiry when expiresAt is
// not nil.
func (s *MachineStore) UpdateStatus(ctx context.Context, id string, status model.MachineStatus, expiresAt *time.Time) error {
	_, err := s.db.Exec(ctx,
		`UPDATE machines SET status = $1, expires_at = COALESCE($2, expires_at), updated_at = now()
		 WHERE id = $3`,
		status, expiresAt, id)
	if err != nil {
		return fmt.Errorf("update machine %s status: %w", id, err)
	}
	return nil
}

// List pages through machine records ordered by id.
func (s *MachineStore) List(ctx context.Context, filter model.MachineFilter, params model.ListParams) ([]model.Machine, bool, error) {
	where, args := filterClause(filter)
	if params.Cursor != "" {
		args = append(args, params.Cursor)
		where = appendCondition(where, fmt.Sprintf("id > $%d", len(args)))
	}
	args = append(args, params.Limit+1)
	query := `SELECT ` + machineColumns + ` FROM machines` + where +
		fmt.Sprintf(` ORDER BY id LIMIT $%d`, len(args))

	machines, err := s.list(ctx, "list machines", query, args...)
	if err != nil {
		return nil, false, err
	}
	hasMore := len(machines) > params.Limit
	if hasMore {
		machines = machines[:params.Limit]
	}
	return machines, hasMore, nil
}

func (s *MachineStore) list(ctx context.Context, op, query string, args ...any) ([]model.Machine, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var machines []model.Machine
	for rows.Next() {
		m, err := scanMachine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan machine: %w", err)
		}
		machines = append(machines, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate machines: %w", err)
	}
	return machines, nil
}

func filterClause(f model.MachineFilter) (string, []any) {
	var conds []string
	var args []any
	if f.UserID != nil {
		args = append(args, *f.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.ChallengeID != nil {
		args = append(args, *f.ChallengeID)
		conds = append(conds, fmt.Sprintf("challenge_id = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func appendCondition(where, cond string) string {
	if where == "" {
		return " WHERE " + cond
	}
	return where + " AND " + cond
}

func scanMachine(row pgx.Row) (*model.Machine, error) {
	var m model.Machine
	var detail []byte
	if err := row.Scan(&m.ID, &m.UserID, &m.ChallengeID, &m.TaskArn, &m.Status,
		&m.StartedAt, &m.ExpiresAt, &detail, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if len(detail) > 0 {
		if err := json.Unmarshal(detail, &m.Detail); err != nil {
			return nil, fmt.Errorf("decode machine %s detail: %w", m.ID, err)
		}
	}
	return &m, nil
}
