package brackets

import (
	"fmt"
	"sort"

	"github.com/Dosada05/bracket-engine/models"
)

const (
	pointsWin  = 3
	pointsDraw = 1
	pointsLoss = 0
)

// tallyStandings builds one entry per roster team from completed matches and returns
// the opponents each team has faced.
func tallyStandings(state *State) ([]*models.StandingEntry, map[int][]int) {
	tournamentID := 0
	if state.Tournament != nil {
		tournamentID = state.Tournament.ID
	}

	entries := make([]*models.StandingEntry, 0, len(state.Seeds))
	byTeam := make(map[int]*models.StandingEntry)
	entryFor := func(teamID int) *models.StandingEntry {
		if e, ok := byTeam[teamID]; ok {
			return e
		}
		e := &models.StandingEntry{TournamentID: tournamentID, TeamID: teamID}
		byTeam[teamID] = e
		entries = append(entries, e)
		return e
	}
	for _, id := range state.teamIDs() {
		entryFor(id)
	}

	opponents := make(map[int][]int)
	for _, m := range completedInOrder(state.Matches) {
		if !m.HasBothTeams() || m.Team1Score == nil || m.Team2Score == nil {
			continue
		}
		t1, t2 := *m.Team1ID, *m.Team2ID
		r1, r2 := roundTotals(m.Maps)
		record(entryFor(t1), *m.Team1Score, *m.Team2Score, r1, r2)
		record(entryFor(t2), *m.Team2Score, *m.Team1Score, r2, r1)
		opponents[t1] = append(opponents[t1], t2)
		opponents[t2] = append(opponents[t2], t1)
	}
	return entries, opponents
}

func record(e *models.StandingEntry, own, opp, roundsOwn, roundsOpp int) {
	e.MatchesPlayed++
	e.MapWins += own
	e.MapLosses += opp
	e.MapDifferential = e.MapWins - e.MapLosses
	e.RoundWins += roundsOwn
	e.RoundLosses += roundsOpp
	e.RoundDiff = e.RoundWins - e.RoundLosses
	switch {
	case own > opp:
		e.Wins++
		e.Points += pointsWin
	case own < opp:
		e.Losses++
		e.Points += pointsLoss
	default:
		e.Draws++
		e.Points += pointsDraw
	}
}

func roundTotals(maps models.MapResults) (int, int) {
	var t1, t2 int
	for _, mp := range maps {
		t1 += mp.Team1Rounds
		t2 += mp.Team2Rounds
	}
	return t1, t2
}

// completedInOrder returns completed matches by completion time, then id.
func completedInOrder(matches []*models.Match) []*models.Match {
	out := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if m.Status == models.MatchStatusCompleted {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CompletedAt, out[j].CompletedAt
		if a != nil && b != nil && !a.Equal(*b) {
			return a.Before(*b)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func assignPositions(entries []*models.StandingEntry) {
	for i, e := range entries {
		e.Position = i + 1
	}
}

// placement - диапазон мест выбывшей команды; start == 0 значит команда ещё в турнире.
type placement struct {
	start int
	end   int
	seq   int
}

func (p placement) label() string {
	if p.start == 0 {
		return ""
	}
	if p.end <= p.start {
		return ordinal(p.start)
	}
	return fmt.Sprintf("%s-%s", ordinal(p.start), ordinal(p.end))
}

// rankByPlacement orders teams still alive first (wins, then seed), then finished teams by
// placement range and elimination order.
func rankByPlacement(state *State, placements map[int]placement) []*models.StandingEntry {
	entries, _ := tallyStandings(state)
	// диапазоны считаются по полной сетке 2^k, места за пределами поля не существуют
	for id, p := range placements {
		if p.end > len(entries) {
			p.end = len(entries)
			placements[id] = p
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		pa, pb := placements[a.TeamID], placements[b.TeamID]
		if pa.start != pb.start {
			return pa.start < pb.start
		}
		if pa.start == 0 {
			if a.Wins != b.Wins {
				return a.Wins > b.Wins
			}
			return state.seedOf(a.TeamID) < state.seedOf(b.TeamID)
		}
		if pa.seq != pb.seq {
			return pa.seq < pb.seq
		}
		return a.TeamID < b.TeamID
	})
	for _, e := range entries {
		e.PlacementLabel = placements[e.TeamID].label()
	}
	assignPositions(entries)
	return entries
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
