package brackets

import (
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
)

type singleEliminationStrategy struct{}

func NewSingleEliminationStrategy() BracketStrategy {
	return &singleEliminationStrategy{}
}

func (s *singleEliminationStrategy) Format() models.TournamentFormat {
	return models.FormatSingleElimination
}

func (s *singleEliminationStrategy) MinTeams() int {
	return 2
}

func (s *singleEliminationStrategy) Generate(params GenerateParams) (*Bracket, error) {
	if len(params.TeamIDs) < s.MinTeams() {
		return nil, fmt.Errorf("%w: single elimination needs at least %d teams, got %d", ErrInsufficientTeams, s.MinTeams(), len(params.TeamIDs))
	}

	g := &graph{}
	tree := buildEliminationTree(g, params.TeamIDs, models.BracketMain, "", params.Options.ByePlacement)
	rounds := len(tree)

	if params.Options.ThirdPlaceMatch && rounds >= 2 {
		semis := tree[rounds-2]
		g.add(&node{
			uid:         "TP1",
			round:       rounds,
			position:    1,
			bracketType: models.BracketThirdPlace,
			inputs:      [2]feed{loserOf(semis[0]), loserOf(semis[1])},
		})
	}

	return &Bracket{
		Format:      s.Format(),
		Matches:     g.resolve(),
		TotalRounds: rounds,
	}, nil
}

func (s *singleEliminationStrategy) Advance(state *State, match *models.Match) (*Advancement, error) {
	return advanceByLinks(state, match), nil
}

func (s *singleEliminationStrategy) ComputeStandings(state *State) []*models.StandingEntry {
	finalRound := state.maxRound(models.BracketMain)
	placements := make(map[int]placement)
	seq := 0
	for _, m := range completedInOrder(state.Matches) {
		winner, loser := m.WinnerID(), m.LoserID()
		if winner == nil {
			continue
		}
		seq++
		switch m.BracketType {
		case models.BracketMain:
			if m.Round == finalRound {
				placements[*winner] = placement{start: 1, end: 1, seq: seq}
				placements[*loser] = placement{start: 2, end: 2, seq: seq}
				continue
			}
			start := 1<<(finalRound-m.Round) + 1
			placements[*loser] = placement{start: start, end: 2 * (start - 1), seq: seq}
		case models.BracketThirdPlace:
			placements[*winner] = placement{start: 3, end: 3, seq: seq}
			placements[*loser] = placement{start: 4, end: 4, seq: seq}
		}
	}
	return rankByPlacement(state, placements)
}

// advanceByLinks moves the winner and the loser of match along its stored links.
func advanceByLinks(state *State, match *models.Match) *Advancement {
	adv := &Advancement{}
	winner, loser := match.WinnerID(), match.LoserID()
	if winner == nil {
		return adv
	}

	move := func(targetID, slot *int, teamID int, role string) {
		if targetID == nil {
			return
		}
		target := state.Match(*targetID)
		if target == nil {
			adv.Warnings = append(adv.Warnings, fmt.Errorf("%w: %s of match %d links to missing match %d", ErrBracketIntegrity, role, match.ID, *targetID))
			return
		}
		changed, err := placeTeam(target, slot, teamID)
		if err != nil {
			adv.Warnings = append(adv.Warnings, fmt.Errorf("placing %s of match %d: %w", role, match.ID, err))
			return
		}
		if changed {
			adv.Updated = append(adv.Updated, target)
			adv.Triggered = true
		}
	}

	move(match.WinnerNextMatchID, match.WinnerNextSlot, *winner, "winner")
	move(match.LoserNextMatchID, match.LoserNextSlot, *loser, "loser")
	return adv
}

// placeTeam writes teamID into the preferred slot of target, or the other one if it is taken.
// A cancelled target is left alone.
func placeTeam(target *models.Match, slot *int, teamID int) (bool, error) {
	if target.HasTeam(teamID) || target.Status == models.MatchStatusCancelled {
		return false, nil
	}
	if target.Status.IsTerminal() {
		return false, fmt.Errorf("%w: match %d is already %s", ErrBracketIntegrity, target.ID, target.Status)
	}

	order := [2]int{models.SlotTeam1, models.SlotTeam2}
	if slot != nil && *slot == models.SlotTeam2 {
		order = [2]int{models.SlotTeam2, models.SlotTeam1}
	}
	for _, sl := range order {
		ref := &target.Team1ID
		if sl == models.SlotTeam2 {
			ref = &target.Team2ID
		}
		if *ref != nil {
			continue
		}
		*ref = intPtr(teamID)
		if target.HasBothTeams() && target.Status == models.MatchStatusPending {
			target.Status = models.MatchStatusScheduled
		}
		return true, nil
	}
	return false, fmt.Errorf("%w: both slots of match %d are already filled", ErrBracketIntegrity, target.ID)
}
