package core

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/edvin/machines/internal/model"
)

// ---------- Mock DB ----------

// mockDB implements the DB interface for testing.
type mockDB struct {
	mock.Mock
}

func (m *mockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDB) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Rows), args.Error(1)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// mockRow implements pgx.Row for testing.
type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	return m.scanFunc(dest...)
}

// ---------- Mock orchestrator ----------

type mockOrchestrator struct {
	mock.Mock
}

func (m *mockOrchestrator) RegisterTaskDefinition(ctx context.Context, slug string, taskDefinition json.RawMessage) error {
	return m.Called(ctx, slug, taskDefinition).Error(0)
}

func (m *mockOrchestrator) DeregisterAllRevisions(ctx context.Context, slug string) error {
	return m.Called(ctx, slug).Error(0)
}

func (m *mockOrchestrator) RunTask(ctx context.Context, slug string, cfg *model.MachineConfig, network *model.NetworkConfig) (model.Detail, error) {
	args := m.Called(ctx, slug, cfg, network)
	return args.Get(0).(model.Detail), args.Error(1)
}

func (m *mockOrchestrator) DescribeTask(ctx context.Context, taskArn string) (model.Detail, error) {
	args := m.Called(ctx, taskArn)
	return args.Get(0).(model.Detail), args.Error(1)
}

func (m *mockOrchestrator) StopTask(ctx context.Context, taskArn string) error {
	return m.Called(ctx, taskArn).Error(0)
}

func (m *mockOrchestrator) StopAllByFamily(ctx context.Context, slug string) error {
	return m.Called(ctx, slug).Error(0)
}

func (m *mockOrchestrator) DeleteSecurityGroups(ctx context.Context, ids []string) error {
	return m.Called(ctx, ids).Error(0)
}

// ---------- Mock network provisioner ----------

type mockNetwork struct {
	mock.Mock
}

func (m *mockNetwork) Allocate(ctx context.Context, slug string, networks model.Networks) (*model.NetworkConfig, error) {
	args := m.Called(ctx, slug, networks)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NetworkConfig), args.Error(1)
}

// ---------- Fakes ----------

// memCache is a StatusCache that never expires entries on its own.
type memCache struct {
	mu      sync.Mutex
	entries map[string]model.Detail
	getErr  error
	setErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]model.Detail{}}
}

func (c *memCache) Get(_ context.Context, id string) (model.Detail, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return model.Detail{}, false, c.getErr
	}
	d, ok := c.entries[id]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, id string, d model.Detail, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[id] = d
	return nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []model.MachineEvent
}

func (r *recordingEvents) Publish(_ context.Context, e model.MachineEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// memStore is an in-memory MachineStore and DefinitionStore.
type memStore struct {
	mu       sync.Mutex
	machines map[string]*model.Machine
	defs     map[int64]*model.MachineDefinition
	seq      int

	// raceInsert simulates a concurrent start committing between the
	// pre-check and the guarded insert.
	raceInsert   bool
	insertErr    error
	updateStatus func(id string, status model.MachineStatus) error
	order        map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		machines: map[string]*model.Machine{},
		defs:     map[int64]*model.MachineDefinition{},
		order:    map[string]int{},
	}
}

func (s *memStore) put(m *model.Machine) {
	cp := *m
	s.seq++
	s.order[m.ID] = s.seq
	s.machines[m.ID] = &cp
}

func (s *memStore) get(id string) *model.Machine {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.machines[id]
	if m == nil {
		return nil
	}
	cp := *m
	return &cp
}

func (s *memStore) sorted(match func(*model.Machine) bool) []model.Machine {
	var out []model.Machine
	for _, m := range s.machines {
		if match(m) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.order[out[i].ID] < s.order[out[j].ID] })
	return out
}

func (s *memStore) countActive(userID int64, now time.Time) int {
	n := 0
	for _, m := range s.machines {
		if m.UserID == userID && m.Active(now) {
			n++
		}
	}
	return n
}

func (s *memStore) CountActiveByUser(_ context.Context, userID int64, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countActive(userID, now), nil
}

func (s *memStore) InsertGuarded(_ context.Context, m *model.Machine, limit int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return false, s.insertErr
	}
	if s.raceInsert {
		s.put(&model.Machine{ID: "racer", UserID: m.UserID, ChallengeID: m.ChallengeID,
			Status: model.MachineRunning, ExpiresAt: m.ExpiresAt})
	}
	if s.countActive(m.UserID, m.StartedAt) >= limit {
		return false, nil
	}
	s.put(m)
	return true, nil
}

func (s *memStore) Insert(_ context.Context, m *model.Machine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(m)
	return nil
}

func (s *memStore) FindRunning(_ context.Context, userID, challengeID int64) (*model.Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := s.sorted(func(m *model.Machine) bool {
		return m.UserID == userID && m.ChallengeID == challengeID && m.Status == model.MachineRunning
	})
	if len(found) == 0 {
		return nil, nil
	}
	return &found[len(found)-1], nil
}

func (s *memStore) ExistsForPair(_ context.Context, userID, challengeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.machines {
		if m.UserID == userID && m.ChallengeID == challengeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) ListRunning(_ context.Context, f model.MachineFilter) ([]model.Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(m *model.Machine) bool {
		return m.Status == model.MachineRunning &&
			(f.UserID == nil || *f.UserID == m.UserID) &&
			(f.ChallengeID == nil || *f.ChallengeID == m.ChallengeID)
	}), nil
}

func (s *memStore) ListRunningByIDs(_ context.Context, ids []string) ([]model.Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	return s.sorted(func(m *model.Machine) bool {
		return m.Status == model.MachineRunning && want[m.ID]
	}), nil
}

func (s *memStore) ListExpired(_ context.Context, now time.Time) ([]model.Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(m *model.Machine) bool {
		return m.Status == model.MachineRunning && !m.ExpiresAt.After(now)
	}), nil
}

func (s *memStore) ListByStatus(_ context.Context, status model.MachineStatus) ([]model.Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(m *model.Machine) bool { return m.Status == status }), nil
}

func (s *memStore) UpdateDetail(_ context.Context, id string, d model.Detail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machines[id].Detail = d
	return nil
}

func (s *memStore) UpdateStatus(_ context.Context, id string, status model.MachineStatus, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateStatus != nil {
		if err := s.updateStatus(id, status); err != nil {
			return err
		}
	}
	s.machines[id].Status = status
	if expiresAt != nil {
		s.machines[id].ExpiresAt = *expiresAt
	}
	return nil
}

func (s *memStore) List(_ context.Context, f model.MachineFilter, p model.ListParams) ([]model.Machine, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sorted(func(m *model.Machine) bool {
		return (f.UserID == nil || *f.UserID == m.UserID) &&
			(f.ChallengeID == nil || *f.ChallengeID == m.ChallengeID) &&
			(f.Status == nil || *f.Status == m.Status)
	})
	if len(all) > p.Limit {
		return all[:p.Limit], true, nil
	}
	return all, false, nil
}

// memDefs adapts memStore to DefinitionStore.
type memDefs struct{ s *memStore }

func (d memDefs) Get(_ context.Context, challengeID int64) (*model.MachineDefinition, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	def := d.s.defs[challengeID]
	if def == nil {
		return nil, nil
	}
	cp := *def
	return &cp, nil
}

func (d memDefs) Create(_ context.Context, def *model.MachineDefinition) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	cp := *def
	d.s.defs[def.ChallengeID] = &cp
	return nil
}

func (d memDefs) Update(ctx context.Context, def *model.MachineDefinition) error {
	return d.Create(ctx, def)
}

func (d memDefs) Delete(_ context.Context, challengeID int64) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	delete(d.s.defs, challengeID)
	return nil
}

func (d memDefs) List(_ context.Context) ([]model.MachineDefinition, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	var out []model.MachineDefinition
	for _, def := range d.s.defs {
		out = append(out, *def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChallengeID < out[j].ChallengeID })
	return out, nil
}
