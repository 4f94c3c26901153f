package brackets

import (
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
)

type doubleEliminationStrategy struct{}

func NewDoubleEliminationStrategy() BracketStrategy {
	return &doubleEliminationStrategy{}
}

func (s *doubleEliminationStrategy) Format() models.TournamentFormat {
	return models.FormatDoubleElimination
}

func (s *doubleEliminationStrategy) MinTeams() int {
	return 2
}

// lowerRoundCounts returns node counts of the lower bracket for a bracket of the given size.
// Нечётные раунды (кроме первого) вдвое меньше предыдущего, чётные принимают проигравших сверху.
func lowerRoundCounts(size int) []int {
	upperRounds := log2(size)
	if upperRounds < 2 {
		return nil
	}
	counts := make([]int, 2*(upperRounds-1))
	counts[0] = size / 4
	for r := 2; r <= len(counts); r++ {
		if r%2 == 0 {
			counts[r-1] = counts[r-2]
		} else {
			counts[r-1] = counts[r-2] / 2
		}
	}
	return counts
}

func (s *doubleEliminationStrategy) Generate(params GenerateParams) (*Bracket, error) {
	if len(params.TeamIDs) < s.MinTeams() {
		return nil, fmt.Errorf("%w: double elimination needs at least %d teams, got %d", ErrInsufficientTeams, s.MinTeams(), len(params.TeamIDs))
	}

	g := &graph{}
	upper := buildEliminationTree(g, params.TeamIDs, models.BracketUpper, "U", params.Options.ByePlacement)
	upperRounds := len(upper)
	upperFinal := upper[upperRounds-1][0]

	counts := lowerRoundCounts(bracketSize(len(params.TeamIDs)))
	lower := make([][]*node, 0, len(counts))
	for r := 1; r <= len(counts); r++ {
		row := make([]*node, counts[r-1])
		for k := range row {
			n := &node{
				uid:         fmt.Sprintf("LR%dM%d", r, k+1),
				round:       r,
				position:    k + 1,
				bracketType: models.BracketLower,
			}
			switch {
			case r == 1:
				n.inputs = [2]feed{loserOf(upper[0][2*k]), loserOf(upper[0][2*k+1])}
			case r%2 == 0:
				// drop-in: победитель нижней сетки против проигравшего верхнего раунда r/2+1
				n.inputs = [2]feed{winnerOf(lower[r-2][k]), loserOf(upper[r/2][k])}
			default:
				prev := lower[r-2]
				n.inputs = [2]feed{winnerOf(prev[2*k]), winnerOf(prev[2*k+1])}
			}
			row[k] = g.add(n)
		}
		lower = append(lower, row)
	}

	grandFinal := &node{
		uid:         "GF1",
		round:       upperRounds + 1,
		position:    1,
		bracketType: models.BracketGrandFinal,
	}
	if len(lower) == 0 {
		grandFinal.inputs = [2]feed{winnerOf(upperFinal), loserOf(upperFinal)}
	} else {
		grandFinal.inputs = [2]feed{winnerOf(upperFinal), winnerOf(lower[len(lower)-1][0])}
	}
	g.add(grandFinal)

	return &Bracket{
		Format:      s.Format(),
		Matches:     g.resolve(),
		TotalRounds: upperRounds + 1,
	}, nil
}

func (s *doubleEliminationStrategy) Advance(state *State, match *models.Match) (*Advancement, error) {
	adv := advanceByLinks(state, match)
	if match.BracketType != models.BracketGrandFinal || !state.Tournament.Options.BracketReset {
		return adv, nil
	}

	winner := match.WinnerID()
	// team2 гранд-финала всегда приходит из нижней сетки
	if winner == nil || match.Team2ID == nil || *winner != *match.Team2ID {
		return adv, nil
	}
	for _, m := range state.Matches {
		if m.BracketType == models.BracketReset {
			return adv, nil
		}
	}

	reset := &models.Match{
		TournamentID: match.TournamentID,
		Round:        match.Round + 1,
		Position:     1,
		BracketType:  models.BracketReset,
		Team1ID:      intPtr(*match.Team1ID),
		Team2ID:      intPtr(*match.Team2ID),
		Status:       models.MatchStatusScheduled,
		BestOf:       match.BestOf,
	}
	adv.Created = append(adv.Created, reset)
	adv.Triggered = true
	return adv, nil
}

func (s *doubleEliminationStrategy) ComputeStandings(state *State) []*models.StandingEntry {
	counts := lowerRoundCounts(1 << state.maxRound(models.BracketUpper))
	hasReset := false
	for _, m := range state.Matches {
		if m.BracketType == models.BracketReset {
			hasReset = true
			break
		}
	}

	placements := make(map[int]placement)
	seq := 0
	for _, m := range completedInOrder(state.Matches) {
		winner, loser := m.WinnerID(), m.LoserID()
		if winner == nil {
			continue
		}
		seq++
		switch m.BracketType {
		case models.BracketLower:
			if m.Round < 1 || m.Round > len(counts) {
				continue
			}
			start := 3
			for j := m.Round; j < len(counts); j++ {
				start += counts[j]
			}
			placements[*loser] = placement{start: start, end: start + counts[m.Round-1] - 1, seq: seq}
		case models.BracketGrandFinal:
			if hasReset {
				continue
			}
			placements[*winner] = placement{start: 1, end: 1, seq: seq}
			placements[*loser] = placement{start: 2, end: 2, seq: seq}
		case models.BracketReset:
			placements[*winner] = placement{start: 1, end: 1, seq: seq}
			placements[*loser] = placement{start: 2, end: 2, seq: seq}
		}
	}
	return rankByPlacement(state, placements)
}
