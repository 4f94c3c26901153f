package brackets

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Dosada05/bracket-engine/models"
)

// SwissRecord - состояние команды перед жеребьёвкой очередного тура.
type SwissRecord struct {
	TeamID    int
	Seed      int
	Points    int
	MapDiff   int
	Opponents map[int]bool
	Byes      int
}

type SwissPairing struct {
	Pairs [][2]int
	Bye   *int
}

// SwissPairer pairs the next Swiss round. Implementations must use every team exactly once,
// either in a pair or as the bye.
type SwissPairer interface {
	Pair(round int, records []SwissRecord) SwissPairing
}

// GreedySwissPairer pairs the top remaining team with the closest-scored opponent it has not
// met yet and backtracks when that choice leaves the rest of the pool with a forced rematch.
// Rematches happen only when no rematch-free round exists for any bye candidate.
type GreedySwissPairer struct{}

func (GreedySwissPairer) Pair(round int, records []SwissRecord) SwissPairing {
	pool := make([]SwissRecord, len(records))
	copy(pool, records)
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].Points != pool[j].Points {
			return pool[i].Points > pool[j].Points
		}
		if pool[i].MapDiff != pool[j].MapDiff {
			return pool[i].MapDiff > pool[j].MapDiff
		}
		return pool[i].Seed < pool[j].Seed
	})

	if len(pool)%2 == 0 {
		pairs, ok := pairUnplayed(pool, make(map[string]bool))
		if !ok {
			pairs = pairClosest(pool)
		}
		return SwissPairing{Pairs: pairs}
	}

	// бай получает команда с наименьшим числом баев, при равенстве - самая низкая в таблице
	candidates := make([]int, len(pool))
	for i := range candidates {
		candidates[i] = len(pool) - 1 - i
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return pool[candidates[i]].Byes < pool[candidates[j]].Byes
	})
	failed := make(map[string]bool)
	for _, idx := range candidates {
		rest := without(pool, idx)
		if pairs, ok := pairUnplayed(rest, failed); ok {
			return SwissPairing{Pairs: pairs, Bye: intPtr(pool[idx].TeamID)}
		}
	}
	idx := candidates[0]
	return SwissPairing{Pairs: pairClosest(without(pool, idx)), Bye: intPtr(pool[idx].TeamID)}
}

// pairUnplayed searches for a pairing of the whole pool without rematches. failed caches pools
// already known to have none.
func pairUnplayed(pool []SwissRecord, failed map[string]bool) ([][2]int, bool) {
	if len(pool) == 0 {
		return nil, true
	}
	key := poolKey(pool)
	if failed[key] {
		return nil, false
	}

	top := pool[0]
	options := make([]int, 0, len(pool)-1)
	for i := 1; i < len(pool); i++ {
		if !top.Opponents[pool[i].TeamID] {
			options = append(options, i)
		}
	}
	sort.SliceStable(options, func(a, b int) bool {
		return absInt(top.Points-pool[options[a]].Points) < absInt(top.Points-pool[options[b]].Points)
	})
	for _, i := range options {
		rest := without(pool[1:], i-1)
		if pairs, ok := pairUnplayed(rest, failed); ok {
			return append([][2]int{{top.TeamID, pool[i].TeamID}}, pairs...), true
		}
	}
	failed[key] = true
	return nil, false
}

// pairClosest pairs the top remaining team with the closest-scored opponent, preferring one it
// has not met. Used only when a rematch cannot be avoided.
func pairClosest(pool []SwissRecord) [][2]int {
	pool = append([]SwissRecord(nil), pool...)
	pairs := make([][2]int, 0, len(pool)/2)
	for len(pool) > 1 {
		top := pool[0]
		closest, fresh := -1, -1
		for i := 1; i < len(pool); i++ {
			diff := absInt(top.Points - pool[i].Points)
			if closest == -1 || diff < absInt(top.Points-pool[closest].Points) {
				closest = i
			}
			if !top.Opponents[pool[i].TeamID] && (fresh == -1 || diff < absInt(top.Points-pool[fresh].Points)) {
				fresh = i
			}
		}
		pick := fresh
		if pick == -1 {
			pick = closest
		}
		pairs = append(pairs, [2]int{top.TeamID, pool[pick].TeamID})
		pool = append(pool[1:pick], pool[pick+1:]...)
	}
	return pairs
}

func without(pool []SwissRecord, idx int) []SwissRecord {
	out := make([]SwissRecord, 0, len(pool)-1)
	out = append(out, pool[:idx]...)
	return append(out, pool[idx+1:]...)
}

func poolKey(pool []SwissRecord) string {
	ids := make([]string, len(pool))
	for i, r := range pool {
		ids[i] = strconv.Itoa(r.TeamID)
	}
	return strings.Join(ids, ",")
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type swissStrategy struct {
	pairer SwissPairer
}

func NewSwissStrategy(pairer SwissPairer) BracketStrategy {
	if pairer == nil {
		pairer = GreedySwissPairer{}
	}
	return &swissStrategy{pairer: pairer}
}

func (s *swissStrategy) Format() models.TournamentFormat {
	return models.FormatSwiss
}

func (s *swissStrategy) MinTeams() int {
	return 4
}

// swissRounds returns max(3, ceil(log2(n))) unless overridden.
func swissRounds(teams int, override int) int {
	if override > 0 {
		return override
	}
	rounds := log2(bracketSize(teams))
	if rounds < 3 {
		rounds = 3
	}
	return rounds
}

// Generate creates only round 1, pairing adjacent seeds. Later rounds are paired as results come in.
func (s *swissStrategy) Generate(params GenerateParams) (*Bracket, error) {
	ids := params.TeamIDs
	if len(ids) < s.MinTeams() {
		return nil, fmt.Errorf("%w: swiss needs at least %d teams, got %d", ErrInsufficientTeams, s.MinTeams(), len(ids))
	}

	matches := make([]*BracketMatch, 0, len(ids)/2)
	for i := 0; i+1 < len(ids); i += 2 {
		position := i/2 + 1
		matches = append(matches, &BracketMatch{
			UID:         fmt.Sprintf("SWR1M%d", position),
			Round:       1,
			Position:    position,
			BracketType: models.BracketSwiss,
			Team1ID:     intPtr(ids[i]),
			Team2ID:     intPtr(ids[i+1]),
		})
	}

	return &Bracket{
		Format:      s.Format(),
		Matches:     matches,
		TotalRounds: swissRounds(len(ids), params.Options.SwissRounds),
	}, nil
}

func (s *swissStrategy) Advance(state *State, match *models.Match) (*Advancement, error) {
	adv := &Advancement{}
	total := state.Tournament.TotalRounds
	if total == 0 {
		total = swissRounds(len(state.teamIDs()), state.Tournament.Options.SwissRounds)
	}
	round := match.Round
	if round >= total {
		return adv, nil
	}
	for _, m := range state.roundMatches(models.BracketSwiss, round) {
		if !m.Status.IsTerminal() {
			return adv, nil
		}
	}
	if len(state.roundMatches(models.BracketSwiss, round+1)) > 0 {
		return adv, nil
	}

	pairing := s.pairer.Pair(round+1, swissRecords(state, round))
	if len(pairing.Pairs) == 0 {
		return adv, fmt.Errorf("%w: swiss pairer produced no pairs for round %d", ErrBracketIntegrity, round+1)
	}
	for i, p := range pairing.Pairs {
		adv.Created = append(adv.Created, &models.Match{
			TournamentID: state.Tournament.ID,
			Round:        round + 1,
			Position:     i + 1,
			BracketType:  models.BracketSwiss,
			Team1ID:      intPtr(p[0]),
			Team2ID:      intPtr(p[1]),
			Status:       models.MatchStatusScheduled,
			BestOf:       match.BestOf,
		})
	}
	adv.Triggered = true
	return adv, nil
}

func swissRecords(state *State, playedRounds int) []SwissRecord {
	entries, opponents := tallyStandings(state)
	playedIn := make(map[int]map[int]bool)
	for _, m := range state.Matches {
		if m.BracketType != models.BracketSwiss || m.Round > playedRounds {
			continue
		}
		if playedIn[m.Round] == nil {
			playedIn[m.Round] = make(map[int]bool)
		}
		for _, t := range []*int{m.Team1ID, m.Team2ID} {
			if t != nil {
				playedIn[m.Round][*t] = true
			}
		}
	}

	records := make([]SwissRecord, 0, len(entries))
	for _, e := range entries {
		rec := SwissRecord{
			TeamID:    e.TeamID,
			Seed:      state.seedOf(e.TeamID),
			Points:    e.Points,
			MapDiff:   e.MapDifferential,
			Opponents: make(map[int]bool),
		}
		for _, opp := range opponents[e.TeamID] {
			rec.Opponents[opp] = true
		}
		for r := 1; r <= playedRounds; r++ {
			if !playedIn[r][e.TeamID] {
				rec.Byes++
			}
		}
		records = append(records, rec)
	}
	return records
}

func (s *swissStrategy) ComputeStandings(state *State) []*models.StandingEntry {
	entries, opponents := tallyStandings(state)
	points := make(map[int]int, len(entries))
	for _, e := range entries {
		points[e.TeamID] = e.Points
	}
	for _, e := range entries {
		buchholz := 0
		for _, opp := range opponents[e.TeamID] {
			buchholz += points[opp]
		}
		e.Buchholz = intPtr(buchholz)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if *a.Buchholz != *b.Buchholz {
			return *a.Buchholz > *b.Buchholz
		}
		if a.MapDifferential != b.MapDifferential {
			return a.MapDifferential > b.MapDifferential
		}
		if a.RoundDiff != b.RoundDiff {
			return a.RoundDiff > b.RoundDiff
		}
		return a.TeamID < b.TeamID
	})
	assignPositions(entries)
	return entries
}
