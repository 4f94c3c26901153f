package brackets

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reversePairer pairs teams by descending id and records how often it was asked.
type reversePairer struct {
	calls int
}

func (p *reversePairer) Pair(round int, records []SwissRecord) SwissPairing {
	p.calls++
	ids := make([]int, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.TeamID)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))
	var out SwissPairing
	for i := 0; i+1 < len(ids); i += 2 {
		out.Pairs = append(out.Pairs, [2]int{ids[i], ids[i+1]})
	}
	return out
}

func sittingOut(state *State, round int) []int {
	busy := make(map[int]bool)
	for _, m := range matchesOf(state, models.BracketSwiss, round) {
		busy[*m.Team1ID] = true
		busy[*m.Team2ID] = true
	}
	out := make([]int, 0)
	for _, id := range state.teamIDs() {
		if !busy[id] {
			out = append(out, id)
		}
	}
	return out
}

func TestSwissRounds(t *testing.T) {
	assert.Equal(t, 3, swissRounds(4, 0))
	assert.Equal(t, 3, swissRounds(8, 0))
	assert.Equal(t, 4, swissRounds(9, 0))
	assert.Equal(t, 5, swissRounds(32, 0))
	assert.Equal(t, 7, swissRounds(8, 7))
}

func TestSwiss_GeneratesOnlyFirstRound(t *testing.T) {
	_, state := newState(t, models.FormatSwiss, 8, models.BracketOptions{})

	assert.Equal(t, 3, state.Tournament.TotalRounds)
	require.Len(t, state.Matches, 4)
	for i, m := range matchesOf(state, models.BracketSwiss, 1) {
		assert.Equal(t, teamID(2*i+1), *m.Team1ID)
		assert.Equal(t, teamID(2*i+2), *m.Team2ID)
		assert.Equal(t, models.MatchStatusScheduled, m.Status)
	}
}

func TestSwiss_NextRoundAfterLastResult(t *testing.T) {
	engine, state := newState(t, models.FormatSwiss, 8, models.BracketOptions{})
	round1 := matchesOf(state, models.BracketSwiss, 1)

	for _, m := range round1[:3] {
		out, err := engine.CompleteMatch(state, m.ID, higherSeedWins(state, m))
		require.NoError(t, err)
		assert.Empty(t, out.Created)
		assert.False(t, out.AdvancementTriggered)
	}
	out, err := engine.CompleteMatch(state, round1[3].ID, higherSeedWins(state, round1[3]))
	require.NoError(t, err)
	assert.True(t, out.AdvancementTriggered)
	require.Len(t, out.Created, 4)
	assignIDs(state, out.Created)

	met := make(map[[2]int]bool)
	for _, m := range round1 {
		met[pairKey(*m.Team1ID, *m.Team2ID)] = true
	}
	got := make([][2]int, 0, 4)
	for _, m := range out.Created {
		assert.Equal(t, 2, m.Round)
		assert.Equal(t, models.MatchStatusScheduled, m.Status)
		assert.False(t, met[pairKey(*m.Team1ID, *m.Team2ID)], "rematch %d vs %d", *m.Team1ID, *m.Team2ID)
		got = append(got, [2]int{*m.Team1ID - 100, *m.Team2ID - 100})
	}
	// победители играют с победителями
	assert.Equal(t, [][2]int{{1, 3}, {5, 7}, {2, 4}, {6, 8}}, got)
}

func TestSwiss_FullRun(t *testing.T) {
	engine, state := newState(t, models.FormatSwiss, 8, models.BracketOptions{})

	played, last := playOut(t, engine, state, higherSeedWins)

	assert.Equal(t, 12, played)
	assert.True(t, last.TournamentCompleted)
	assert.Equal(t, 3, state.maxRound(models.BracketSwiss))
	require.Len(t, last.Standings, 8)
	assert.Equal(t, teamID(1), last.Standings[0].TeamID)
	assert.Equal(t, 9, last.Standings[0].Points)
	require.NotNil(t, last.Standings[0].Buchholz)
}

func TestSwiss_OddFieldRotatesBye(t *testing.T) {
	engine, state := newState(t, models.FormatSwiss, 5, models.BracketOptions{})
	require.Len(t, state.Matches, 2)

	played, last := playOut(t, engine, state, higherSeedWins)
	assert.Equal(t, 6, played)
	assert.True(t, last.TournamentCompleted)

	seen := make(map[int]bool)
	for r := 1; r <= 3; r++ {
		out := sittingOut(state, r)
		require.Len(t, out, 1, "round %d", r)
		assert.False(t, seen[out[0]], "team %d sat out twice", out[0])
		seen[out[0]] = true
	}
	assert.Equal(t, []int{teamID(5)}, sittingOut(state, 1))
	assert.Equal(t, []int{teamID(4)}, sittingOut(state, 2))
	assert.Equal(t, []int{teamID(3)}, sittingOut(state, 3))

	records := swissRecords(state, 3)
	byes := make(map[int]int)
	for _, r := range records {
		byes[r.TeamID] = r.Byes
	}
	assert.Equal(t, 1, byes[teamID(5)])
	assert.Equal(t, 0, byes[teamID(1)])
}

func TestSwiss_BuchholzBreaksTies(t *testing.T) {
	engine, state := newState(t, models.FormatSwiss, 4, models.BracketOptions{})
	round1 := matchesOf(state, models.BracketSwiss, 1)

	_, err := engine.CompleteMatch(state, round1[0].ID, ScoreReport{Team1Score: 1, Team2Score: 0})
	require.NoError(t, err)
	out, err := engine.CompleteMatch(state, round1[1].ID, ScoreReport{Team1Score: 1, Team2Score: 0})
	require.NoError(t, err)
	assignIDs(state, out.Created)

	round2 := matchesOf(state, models.BracketSwiss, 2)
	require.Len(t, round2, 2)
	assert.Equal(t, []int{teamID(1), teamID(3)}, []int{*round2[0].Team1ID, *round2[0].Team2ID})
	assert.Equal(t, []int{teamID(2), teamID(4)}, []int{*round2[1].Team1ID, *round2[1].Team2ID})

	_, err = engine.CompleteMatch(state, round2[0].ID, ScoreReport{Team1Score: 1, Team2Score: 0})
	require.NoError(t, err)
	out, err = engine.CompleteMatch(state, round2[1].ID, ScoreReport{Team1Score: 0, Team2Score: 1})
	require.NoError(t, err)

	order := make([]int, 0, 4)
	for _, e := range out.Standings {
		order = append(order, e.TeamID)
	}
	assert.Equal(t, []int{teamID(1), teamID(3), teamID(4), teamID(2)}, order)
	assert.Equal(t, 9, *out.Standings[1].Buchholz)
	assert.Equal(t, 3, *out.Standings[2].Buchholz)
	assert.Equal(t, out.Standings[1].Points, out.Standings[2].Points)
	assert.Equal(t, out.Standings[1].MapDifferential, out.Standings[2].MapDifferential)
}

func TestSwiss_CustomPairer(t *testing.T) {
	pairer := &reversePairer{}
	_, state := newState(t, models.FormatSwiss, 4, models.BracketOptions{})
	engine := withTickingClock(NewEngine(NewRegistry(NewSwissStrategy(pairer)), testLogger()))

	for _, m := range matchesOf(state, models.BracketSwiss, 1) {
		out, err := engine.CompleteMatch(state, m.ID, higherSeedWins(state, m))
		require.NoError(t, err)
		assignIDs(state, out.Created)
	}

	assert.Equal(t, 1, pairer.calls)
	round2 := matchesOf(state, models.BracketSwiss, 2)
	require.Len(t, round2, 2)
	assert.Equal(t, teamID(4), *round2[0].Team1ID)
	assert.Equal(t, teamID(3), *round2[0].Team2ID)
}

func TestSwiss_EmptyPairingIsIntegrityError(t *testing.T) {
	_, state := newState(t, models.FormatSwiss, 4, models.BracketOptions{})
	engine := NewEngine(NewRegistry(NewSwissStrategy(pairerFunc(func(int, []SwissRecord) SwissPairing {
		return SwissPairing{}
	}))), testLogger())

	round1 := matchesOf(state, models.BracketSwiss, 1)
	_, err := engine.CompleteMatch(state, round1[0].ID, ScoreReport{Team1Score: 1, Team2Score: 0})
	require.NoError(t, err)
	_, err = engine.CompleteMatch(state, round1[1].ID, ScoreReport{Team1Score: 1, Team2Score: 0})
	assert.ErrorIs(t, err, ErrBracketIntegrity)
}

func TestSwiss_TooFewTeams(t *testing.T) {
	engine := testEngine()
	_, err := engine.Generate(models.FormatSwiss, GenerateParams{
		Tournament: &models.Tournament{ID: 1, Format: models.FormatSwiss},
		TeamIDs:    seededIDs(3),
	})
	assert.ErrorIs(t, err, ErrInsufficientTeams)
}

type pairerFunc func(round int, records []SwissRecord) SwissPairing

func (f pairerFunc) Pair(round int, records []SwissRecord) SwissPairing {
	return f(round, records)
}

func TestGreedySwissPairer_AvoidsRematch(t *testing.T) {
	records := []SwissRecord{
		{TeamID: 1, Seed: 1, Points: 3, Opponents: map[int]bool{2: true}},
		{TeamID: 2, Seed: 2, Points: 3, Opponents: map[int]bool{1: true}},
		{TeamID: 3, Seed: 3, Points: 0, Opponents: map[int]bool{4: true}},
		{TeamID: 4, Seed: 4, Points: 0, Opponents: map[int]bool{3: true}},
	}

	pairing := GreedySwissPairer{}.Pair(2, records)

	assert.Nil(t, pairing.Bye)
	assert.Equal(t, [][2]int{{1, 3}, {2, 4}}, pairing.Pairs)
}

func TestGreedySwissPairer_BacktracksToAvoidRematch(t *testing.T) {
	// 1-2 ещё не играли, но 3-4 уже встречались: жадный выбор 1-2 оставил бы повтор 3-4
	records := []SwissRecord{
		{TeamID: 1, Seed: 1, Points: 6, Opponents: map[int]bool{}},
		{TeamID: 2, Seed: 2, Points: 6, Opponents: map[int]bool{}},
		{TeamID: 3, Seed: 3, Points: 3, Opponents: map[int]bool{4: true}},
		{TeamID: 4, Seed: 4, Points: 3, Opponents: map[int]bool{3: true}},
	}

	pairing := GreedySwissPairer{}.Pair(3, records)

	assert.Nil(t, pairing.Bye)
	assert.Equal(t, [][2]int{{1, 3}, {2, 4}}, pairing.Pairs)
}

func TestGreedySwissPairer_MovesByeToAvoidRematch(t *testing.T) {
	records := []SwissRecord{
		{TeamID: 1, Seed: 1, Points: 3, Opponents: map[int]bool{2: true}},
		{TeamID: 2, Seed: 2, Points: 0, Opponents: map[int]bool{1: true}},
		{TeamID: 3, Seed: 3, Points: 0, Opponents: map[int]bool{}},
	}

	pairing := GreedySwissPairer{}.Pair(2, records)

	require.NotNil(t, pairing.Bye)
	assert.Equal(t, 2, *pairing.Bye)
	assert.Equal(t, [][2]int{{1, 3}}, pairing.Pairs)
}

func TestGreedySwissPairer_RematchOnlyWhenUnavoidable(t *testing.T) {
	records := []SwissRecord{
		{TeamID: 1, Seed: 1, Points: 6, Opponents: map[int]bool{2: true, 3: true, 4: true}},
		{TeamID: 2, Seed: 2, Points: 3, Opponents: map[int]bool{1: true, 3: true, 4: true}},
		{TeamID: 3, Seed: 3, Points: 3, Opponents: map[int]bool{1: true, 2: true, 4: true}},
		{TeamID: 4, Seed: 4, Points: 0, Opponents: map[int]bool{1: true, 2: true, 3: true}},
	}

	pairing := GreedySwissPairer{}.Pair(4, records)

	assert.Equal(t, [][2]int{{1, 2}, {3, 4}}, pairing.Pairs)
}

// freePairingExists reports whether ids can be split into pairs (plus one bye for an odd
// count) where nobody meets a previous opponent.
func freePairingExists(ids []int, met map[[2]int]bool) bool {
	if len(ids)%2 == 1 {
		for i := range ids {
			rest := append(append([]int(nil), ids[:i]...), ids[i+1:]...)
			if freePairingExists(rest, met) {
				return true
			}
		}
		return false
	}
	if len(ids) == 0 {
		return true
	}
	for i := 1; i < len(ids); i++ {
		if met[pairKey(ids[0], ids[i])] {
			continue
		}
		rest := append(append([]int(nil), ids[1:i]...), ids[i+1:]...)
		if freePairingExists(rest, met) {
			return true
		}
	}
	return false
}

func TestGreedySwissPairer_NoAvoidableRematches(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for n := 4; n <= 11; n++ {
		for run := 0; run < 50; run++ {
			met := make(map[[2]int]bool)
			records := make([]SwissRecord, n)
			for i := range records {
				records[i] = SwissRecord{TeamID: i + 1, Seed: i + 1, Points: 3 * rng.IntN(4), Opponents: map[int]bool{}}
			}
			for i := 0; i < n; i++ {
				for j := i + 1; j < n; j++ {
					if rng.IntN(3) == 0 {
						met[pairKey(i+1, j+1)] = true
						records[i].Opponents[j+1] = true
						records[j].Opponents[i+1] = true
					}
				}
			}

			pairing := GreedySwissPairer{}.Pair(2, records)

			used := make(map[int]int)
			rematches := 0
			for _, p := range pairing.Pairs {
				used[p[0]]++
				used[p[1]]++
				if met[pairKey(p[0], p[1])] {
					rematches++
				}
			}
			if pairing.Bye != nil {
				used[*pairing.Bye]++
			}
			require.Len(t, used, n, "n=%d run=%d", n, run)
			for id, c := range used {
				require.Equal(t, 1, c, "team %d used %d times (n=%d run=%d)", id, c, n, run)
			}

			ids := make([]int, n)
			for i := range ids {
				ids[i] = i + 1
			}
			if freePairingExists(ids, met) {
				assert.Zero(t, rematches, "n=%d run=%d", n, run)
			}
		}
	}
}
