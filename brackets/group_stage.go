package brackets

import (
	"fmt"
	"sort"

	"github.com/Dosada05/bracket-engine/models"
)

const defaultAdvancePerGroup = 2

type groupStageStrategy struct {
	roundRobin *roundRobinStrategy
}

// NewGroupStageStrategy splits the field into groups and plays a round robin inside each one.
func NewGroupStageStrategy() BracketStrategy {
	return &groupStageStrategy{roundRobin: &roundRobinStrategy{}}
}

func (s *groupStageStrategy) Format() models.TournamentFormat {
	return models.FormatGroupStage
}

func (s *groupStageStrategy) MinTeams() int {
	return 4
}

// GroupCount returns how many groups a field of teams is split into. A requested count is
// honoured as long as every group keeps at least two teams.
func GroupCount(teams, requested int) int {
	count := requested
	if count < 2 {
		switch {
		case teams <= 8:
			count = 2
		case teams <= 16:
			count = 4
		case teams <= 24:
			count = 6
		default:
			count = 8
		}
	}
	if count > teams/2 {
		count = teams / 2
	}
	return count
}

// GroupName - "Group A", "Group B", ...; после Z просто номер.
func GroupName(group int) string {
	if group >= 1 && group <= 26 {
		return "Group " + string(rune('A'+group-1))
	}
	return fmt.Sprintf("Group %d", group)
}

// snakeGroups раскладывает посев змейкой: 1-2-3-4, 8-7-6-5, ...
func snakeGroups(ids []int, groups int) [][]int {
	out := make([][]int, groups)
	for i, id := range ids {
		pass, idx := i/groups, i%groups
		if pass%2 == 1 {
			idx = groups - 1 - idx
		}
		out[idx] = append(out[idx], id)
	}
	return out
}

func (s *groupStageStrategy) Generate(params GenerateParams) (*Bracket, error) {
	if len(params.TeamIDs) < s.MinTeams() {
		return nil, fmt.Errorf("%w: group stage needs at least %d teams, got %d", ErrInsufficientTeams, s.MinTeams(), len(params.TeamIDs))
	}

	groups := snakeGroups(params.TeamIDs, GroupCount(len(params.TeamIDs), params.Options.GroupCount))
	matches := make([]*BracketMatch, 0)
	totalRounds := 0
	for i, teamIDs := range groups {
		group := i + 1
		rr, err := s.roundRobin.Generate(GenerateParams{
			Tournament: params.Tournament,
			TeamIDs:    teamIDs,
			Options:    params.Options,
		})
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", group, err)
		}
		for _, bm := range rr.Matches {
			bm.UID = fmt.Sprintf("G%d%s", group, bm.UID)
			bm.BracketType = models.BracketGroup
			bm.GroupNumber = intPtr(group)
			matches = append(matches, bm)
		}
		if rr.TotalRounds > totalRounds {
			totalRounds = rr.TotalRounds
		}
	}

	return &Bracket{
		Format:      s.Format(),
		Matches:     matches,
		TotalRounds: totalRounds,
	}, nil
}

func (s *groupStageStrategy) Advance(state *State, match *models.Match) (*Advancement, error) {
	return &Advancement{}, nil
}

// ComputeStandings ranks every group on its own (points, map diff, round diff) and lists the
// groups one after another. The top advance_per_group teams of each group are marked advancing.
func (s *groupStageStrategy) ComputeStandings(state *State) []*models.StandingEntry {
	entries, _ := tallyStandings(state)

	groupOf := make(map[int]int)
	for _, m := range state.Matches {
		if m.BracketType != models.BracketGroup || m.GroupNumber == nil {
			continue
		}
		for _, t := range []*int{m.Team1ID, m.Team2ID} {
			if t != nil {
				groupOf[*t] = *m.GroupNumber
			}
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if groupOf[a.TeamID] != groupOf[b.TeamID] {
			return groupOf[a.TeamID] < groupOf[b.TeamID]
		}
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

	advance := 0
	if state.Tournament != nil {
		advance = state.Tournament.Options.AdvancePerGroup
	}
	if advance == 0 {
		advance = defaultAdvancePerGroup
	}
	rank := 0
	current := -1
	for _, e := range entries {
		group, ok := groupOf[e.TeamID]
		if !ok {
			continue
		}
		if group != current {
			current, rank = group, 0
		}
		rank++
		e.GroupNumber = intPtr(group)
		e.GroupPosition = intPtr(rank)
		e.Advancing = rank <= advance
	}
	assignPositions(entries)
	return entries
}

// AdvancingTeams returns the teams that leave the group stage, group winners first, then
// runners-up and so on. Within one group rank teams keep group order, which is the usual
// seed order for a playoff bracket.
func AdvancingTeams(standings []*models.StandingEntry) []*models.StandingEntry {
	out := make([]*models.StandingEntry, 0)
	for _, e := range standings {
		if e.Advancing && e.GroupPosition != nil && e.GroupNumber != nil {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if *out[i].GroupPosition != *out[j].GroupPosition {
			return *out[i].GroupPosition < *out[j].GroupPosition
		}
		return *out[i].GroupNumber < *out[j].GroupNumber
	})
	return out
}
