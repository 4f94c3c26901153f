package brackets

import (
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/stretchr/testify/require"
)

// team ids are 100+seed so they never collide with match ids in assertions.
func teamID(seed int) int {
	return 100 + seed
}

func seededIDs(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = teamID(i + 1)
	}
	return ids
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEngine ticks its clock one second per result so completion order is deterministic.
func testEngine() *Engine {
	return withTickingClock(NewEngine(DefaultRegistry(), testLogger()))
}

func withTickingClock(e *Engine) *Engine {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ticks := 0
	e.now = func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * time.Second)
	}
	return e
}

// newState generates a bracket for n teams and loads it the way the service would after persisting.
func newState(t *testing.T, format models.TournamentFormat, n int, opts models.BracketOptions) (*Engine, *State) {
	t.Helper()
	engine := testEngine()
	opts, err := NormalizeOptions(format, opts)
	require.NoError(t, err)

	tournament := &models.Tournament{ID: 1, Name: "Test Cup", Format: format, Status: models.StatusOngoing, TotalTeams: n, Options: opts}
	bracket, err := engine.Generate(format, GenerateParams{Tournament: tournament, TeamIDs: seededIDs(n), Options: opts})
	require.NoError(t, err)
	tournament.TotalRounds = bracket.TotalRounds

	ids := make(map[string]int, len(bracket.Matches))
	for i, bm := range bracket.Matches {
		ids[bm.UID] = i + 1
	}
	state := &State{Tournament: tournament}
	for _, bm := range bracket.Matches {
		m := bm.ToModel(tournament.ID, opts.BestOf)
		m.ID = ids[bm.UID]
		m.WinnerNextMatchID, m.WinnerNextSlot, m.LoserNextMatchID, m.LoserNextSlot, err = bm.ResolveLinks(ids)
		require.NoError(t, err)
		state.Matches = append(state.Matches, m)
	}
	for i, id := range seededIDs(n) {
		state.Seeds = append(state.Seeds, models.SeedAssignment{TournamentID: tournament.ID, TeamID: id, Seed: i + 1})
	}
	return engine, state
}

// assignIDs gives matches created during progression the next free ids.
func assignIDs(state *State, created []*models.Match) {
	next := 0
	for _, m := range state.Matches {
		if m.ID > next {
			next = m.ID
		}
	}
	for _, m := range created {
		if m.ID == 0 {
			next++
			m.ID = next
		}
	}
}

func nextScheduled(state *State) *models.Match {
	var pick *models.Match
	for _, m := range state.Matches {
		if m.Status != models.MatchStatusScheduled {
			continue
		}
		if pick == nil || m.ID < pick.ID {
			pick = m
		}
	}
	return pick
}

// higherSeedWins reports 2-0 for the better seed.
func higherSeedWins(state *State, m *models.Match) ScoreReport {
	if state.seedOf(*m.Team1ID) < state.seedOf(*m.Team2ID) {
		return ScoreReport{Team1Score: 2, Team2Score: 0}
	}
	return ScoreReport{Team1Score: 0, Team2Score: 2}
}

// playOut completes every playable match and returns how many were played and the last outcome.
func playOut(t *testing.T, engine *Engine, state *State, report func(*State, *models.Match) ScoreReport) (int, *Outcome) {
	t.Helper()
	played := 0
	var last *Outcome
	for m := nextScheduled(state); m != nil; m = nextScheduled(state) {
		out, err := engine.CompleteMatch(state, m.ID, report(state, m))
		require.NoError(t, err)
		require.Empty(t, out.Warnings)
		assignIDs(state, out.Created)
		played++
		last = out
		require.Less(t, played, 1000, "bracket never finishes")
	}
	return played, last
}

func matchesOf(state *State, bt models.BracketType, round int) []*models.Match {
	out := state.roundMatches(bt, round)
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func ptrValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
