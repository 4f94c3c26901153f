package brackets

import (
	"fmt"
	"sort"

	"github.com/Dosada05/bracket-engine/models"
)

type roundRobinStrategy struct{}

func NewRoundRobinStrategy() BracketStrategy {
	return &roundRobinStrategy{}
}

func (s *roundRobinStrategy) Format() models.TournamentFormat {
	return models.FormatRoundRobin
}

func (s *roundRobinStrategy) MinTeams() int {
	return 2
}

// Generate schedules every pair once per leg with the circle method: the first team stays
// fixed and the rest rotate, so nobody plays twice in a round.
// For a double round-robin the second leg repeats the schedule with sides swapped.
func (s *roundRobinStrategy) Generate(params GenerateParams) (*Bracket, error) {
	if len(params.TeamIDs) < s.MinTeams() {
		return nil, fmt.Errorf("%w: round robin needs at least %d teams, got %d", ErrInsufficientTeams, s.MinTeams(), len(params.TeamIDs))
	}

	legs := params.Options.RoundRobinLegs
	if legs == 0 {
		legs = 1
	}

	ids := make([]int, len(params.TeamIDs))
	copy(ids, params.TeamIDs)
	if len(ids)%2 == 1 {
		ids = append(ids, 0) // фантом: кто с ним в паре - отдыхает
	}
	n := len(ids)
	roundsPerLeg := n - 1

	firstLeg := make([]*BracketMatch, 0, n/2*roundsPerLeg)
	for r := 1; r <= roundsPerLeg; r++ {
		position := 0
		for i := 0; i < n/2; i++ {
			home, away := ids[i], ids[n-1-i]
			if home == 0 || away == 0 {
				continue
			}
			if i == 0 && r%2 == 0 {
				home, away = away, home
			}
			position++
			firstLeg = append(firstLeg, &BracketMatch{
				UID:         fmt.Sprintf("RR1R%dM%d", r, position),
				Round:       r,
				Position:    position,
				BracketType: models.BracketRoundRobin,
				Team1ID:     intPtr(home),
				Team2ID:     intPtr(away),
			})
		}

		rotated := make([]int, n)
		rotated[0] = ids[0]
		rotated[1] = ids[n-1]
		copy(rotated[2:], ids[1:n-1])
		ids = rotated
	}

	matches := firstLeg
	if legs == 2 {
		for _, m := range firstLeg {
			round := m.Round + roundsPerLeg
			matches = append(matches, &BracketMatch{
				UID:         fmt.Sprintf("RR2R%dM%d", round, m.Position),
				Round:       round,
				Position:    m.Position,
				BracketType: models.BracketRoundRobin,
				Team1ID:     intPtr(*m.Team2ID),
				Team2ID:     intPtr(*m.Team1ID),
			})
		}
	}

	return &Bracket{
		Format:      s.Format(),
		Matches:     matches,
		TotalRounds: roundsPerLeg * legs,
	}, nil
}

func (s *roundRobinStrategy) Advance(state *State, match *models.Match) (*Advancement, error) {
	return &Advancement{}, nil
}

func (s *roundRobinStrategy) ComputeStandings(state *State) []*models.StandingEntry {
	entries, _ := tallyStandings(state)
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Points != b.Points {
			return a.Points > b.Points
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
