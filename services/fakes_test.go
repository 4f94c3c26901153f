package services

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
	"github.com/Dosada05/bracket-engine/storage"
)

// memStore - таблицы в памяти; fakeTx откатывает их снимок при ошибке.
type memStore struct {
	mu          sync.Mutex
	tournaments map[int]models.Tournament
	teams       map[int]models.Team
	seeds       map[int][]models.SeedAssignment
	matches     map[int]models.Match
	standings   map[int][]models.StandingEntry
	nextID      int
}

func newMemStore() *memStore {
	return &memStore{
		tournaments: make(map[int]models.Tournament),
		teams:       make(map[int]models.Team),
		seeds:       make(map[int][]models.SeedAssignment),
		matches:     make(map[int]models.Match),
		standings:   make(map[int][]models.StandingEntry),
	}
}

type memSnapshot struct {
	tournaments map[int]models.Tournament
	seeds       map[int][]models.SeedAssignment
	matches     map[int]models.Match
	standings   map[int][]models.StandingEntry
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		tournaments: make(map[int]models.Tournament, len(s.tournaments)),
		seeds:       make(map[int][]models.SeedAssignment, len(s.seeds)),
		matches:     make(map[int]models.Match, len(s.matches)),
		standings:   make(map[int][]models.StandingEntry, len(s.standings)),
	}
	for k, v := range s.tournaments {
		snap.tournaments[k] = v
	}
	for k, v := range s.seeds {
		snap.seeds[k] = append([]models.SeedAssignment(nil), v...)
	}
	for k, v := range s.matches {
		snap.matches[k] = v
	}
	for k, v := range s.standings {
		snap.standings[k] = append([]models.StandingEntry(nil), v...)
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments = snap.tournaments
	s.seeds = snap.seeds
	s.matches = snap.matches
	s.standings = snap.standings
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

type fakeTx struct {
	store *memStore
	calls int
}

func (f *fakeTx) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.calls++
	snap := f.store.snapshot()
	if err := fn(nil); err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

type fakeTournamentRepo struct{ *memStore }

func (r fakeTournamentRepo) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.id()
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	r.tournaments[t.ID] = *t
	return nil
}

func (r fakeTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r fakeTournamentRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r fakeTournamentRepo) List(_ context.Context, _ repositories.SQLExecutor, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Tournament, 0)
	for _, t := range r.tournaments {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Format != nil && t.Format != *filter.Format {
			continue
		}
		t := t
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r fakeTournamentRepo) UpdateBracketState(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	r.tournaments[t.ID] = *t
	return nil
}

func (r fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus, completedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	t.CompletedAt = completedAt
	r.tournaments[id] = t
	return nil
}

type fakeMatchRepo struct{ *memStore }

func (r fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[m.TournamentID]; !ok {
		return repositories.ErrMatchTournamentInvalid
	}
	m.ID = r.id()
	m.CreatedAt = time.Now().UTC()
	r.matches[m.ID] = *m
	return nil
}

func (r fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return &m, nil
}

func (r fakeMatchRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int, filter repositories.ListMatchesFilter) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range r.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if filter.BracketType != nil && m.BracketType != *filter.BracketType {
			continue
		}
		if filter.Round != nil && m.Round != *filter.Round {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		m := m
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.BracketType != b.BracketType {
			return a.BracketType < b.BracketType
		}
		if ga, gb := groupOrder(a), groupOrder(b); ga != gb {
			return ga < gb
		}
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.ID < b.ID
	})
	return out, nil
}

func groupOrder(m *models.Match) int {
	if m.GroupNumber == nil {
		return 0
	}
	return *m.GroupNumber
}

func (r fakeMatchRepo) Update(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.matches[m.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	stored.Team1ID, stored.Team2ID = m.Team1ID, m.Team2ID
	stored.Status = m.Status
	stored.Team1Score, stored.Team2Score = m.Team1Score, m.Team2Score
	stored.Maps = m.Maps
	stored.CompletedAt = m.CompletedAt
	r.matches[m.ID] = stored
	return nil
}

func (r fakeMatchRepo) UpdateLinks(_ context.Context, _ repositories.SQLExecutor, id int, winnerNextID, winnerSlot, loserNextID, loserSlot *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	stored.WinnerNextMatchID, stored.WinnerNextSlot = winnerNextID, winnerSlot
	stored.LoserNextMatchID, stored.LoserNextSlot = loserNextID, loserSlot
	r.matches[id] = stored
	return nil
}

func (r fakeMatchRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.matches {
		if m.TournamentID == tournamentID {
			delete(r.matches, id)
		}
	}
	return nil
}

type fakeSeedRepo struct{ *memStore }

func (r fakeSeedRepo) BatchCreate(_ context.Context, _ repositories.SQLExecutor, seeds []models.SeedAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range seeds {
		if _, ok := r.teams[s.TeamID]; !ok {
			return repositories.ErrSeedTeamInvalid
		}
		r.seeds[s.TournamentID] = append(r.seeds[s.TournamentID], s)
	}
	return nil
}

func (r fakeSeedRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]models.SeedAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]models.SeedAssignment{}, r.seeds[tournamentID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Seed < out[j].Seed })
	return out, nil
}

func (r fakeSeedRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.seeds, tournamentID)
	return nil
}

type fakeStandingRepo struct{ *memStore }

func (r fakeStandingRepo) BatchCreate(_ context.Context, _ repositories.SQLExecutor, standings []*models.StandingEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range standings {
		r.standings[s.TournamentID] = append(r.standings[s.TournamentID], *s)
	}
	return nil
}

func (r fakeStandingRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.StandingEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.StandingEntry, 0, len(r.standings[tournamentID]))
	for _, s := range r.standings[tournamentID] {
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r fakeStandingRepo) DeleteByTournamentID(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.standings, tournamentID)
	return nil
}

type fakeTeamRepo struct{ *memStore }

func (r fakeTeamRepo) Create(_ context.Context, _ repositories.SQLExecutor, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.teams {
		if t.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	team.ID = r.id()
	r.teams[team.ID] = *team
	return nil
}

func (r fakeTeamRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return &t, nil
}

func (r fakeTeamRepo) ListByIDs(_ context.Context, _ repositories.SQLExecutor, ids []int) ([]models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Team, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.teams[id]; ok {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type publishedEvent struct {
	TournamentID int
	Type         string
	Payload      interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (n *recordingNotifier) Publish(tournamentID int, eventType string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, publishedEvent{TournamentID: tournamentID, Type: eventType, Payload: payload})
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}

type recordingArchiver struct {
	snapshots []storage.BracketSnapshot
	err       error
}

func (a *recordingArchiver) Archive(_ context.Context, snapshot storage.BracketSnapshot) (*storage.UploadResult, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.snapshots = append(a.snapshots, snapshot)
	key := storage.ArchiveKey(snapshot.Bracket.TournamentID, snapshot.ArchivedAt)
	return &storage.UploadResult{Key: key, Location: "https://cdn.example.com/" + key}, nil
}

// testEnv собирает все сервисы поверх одного memStore.
type testEnv struct {
	store       *memStore
	tx          *fakeTx
	notifier    *recordingNotifier
	archiver    *recordingArchiver
	tournaments TournamentService
	teams       TeamService
	brackets    BracketService
	matches     MatchService
	standings   StandingsService
}

func newTestEnv() *testEnv {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemStore()
	tx := &fakeTx{store: store}
	notifier := &recordingNotifier{}
	archiver := &recordingArchiver{}
	registry := brackets.DefaultRegistry()
	engine := brackets.NewEngine(registry, logger)

	tournamentRepo := fakeTournamentRepo{store}
	matchRepo := fakeMatchRepo{store}
	seedRepo := fakeSeedRepo{store}
	standingRepo := fakeStandingRepo{store}
	teamRepo := fakeTeamRepo{store}

	return &testEnv{
		store:       store,
		tx:          tx,
		notifier:    notifier,
		archiver:    archiver,
		tournaments: NewTournamentService(tournamentRepo, registry, logger),
		teams:       NewTeamService(teamRepo, logger),
		brackets: NewBracketService(tx, tournamentRepo, teamRepo, seedRepo, matchRepo, standingRepo,
			engine, brackets.NewSeeder(rand.New(rand.NewPCG(1, 2))), notifier, logger),
		matches: NewMatchService(tx, tournamentRepo, matchRepo, seedRepo, standingRepo, teamRepo,
			engine, archiver, notifier, logger),
		standings: NewStandingsService(tournamentRepo, standingRepo, teamRepo, logger),
	}
}
