package brackets

import (
	"fmt"
	"sort"
	"time"

	"github.com/Dosada05/bracket-engine/models"
)

type TeamView struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	ShortName *string `json:"short_name,omitempty"`
	LogoURL   *string `json:"logo_url,omitempty"`
	Seed      int     `json:"seed,omitempty"`
}

type MatchView struct {
	ID                int                `json:"id"`
	Round             int                `json:"round"`
	Position          int                `json:"position"`
	BracketType       models.BracketType `json:"bracket_type"`
	GroupNumber       *int               `json:"group_number,omitempty"`
	Status            models.MatchStatus `json:"status"`
	Team1             *TeamView          `json:"team1,omitempty"`
	Team2             *TeamView          `json:"team2,omitempty"`
	Team1Score        *int               `json:"team1_score,omitempty"`
	Team2Score        *int               `json:"team2_score,omitempty"`
	BestOf            int                `json:"best_of"`
	Maps              models.MapResults  `json:"maps,omitempty"`
	WinnerID          *int               `json:"winner_id,omitempty"`
	CompletedAt       *time.Time         `json:"completed_at,omitempty"`
	WinnerNextMatchID *int               `json:"winner_next_match_id,omitempty"`
	LoserNextMatchID  *int               `json:"loser_next_match_id,omitempty"`
}

type RoundView struct {
	Number  int         `json:"number"`
	Name    string      `json:"name"`
	Matches []MatchView `json:"matches"`
}

type SectionView struct {
	BracketType models.BracketType `json:"bracket_type"`
	GroupNumber *int               `json:"group_number,omitempty"`
	Name        string             `json:"name"`
	Rounds      []RoundView        `json:"rounds"`
}

type Progress struct {
	CompletedMatches int     `json:"completed_matches"`
	TotalMatches     int     `json:"total_matches"`
	Percent          float64 `json:"percent"`
	CurrentRound     int     `json:"current_round"`
}

type BracketView struct {
	TournamentID int                     `json:"tournament_id"`
	Name         string                  `json:"name"`
	Format       models.TournamentFormat `json:"format"`
	Status       models.TournamentStatus `json:"status"`
	TotalTeams   int                     `json:"total_teams"`
	TotalRounds  int                     `json:"total_rounds"`
	Sections     []SectionView           `json:"sections"`
	Progress     Progress                `json:"progress"`
}

var sectionOrder = []models.BracketType{
	models.BracketMain,
	models.BracketUpper,
	models.BracketLower,
	models.BracketThirdPlace,
	models.BracketGrandFinal,
	models.BracketReset,
	models.BracketRoundRobin,
	models.BracketSwiss,
	models.BracketGroup,
}

var sectionNames = map[models.BracketType]string{
	models.BracketMain:       "Bracket",
	models.BracketUpper:      "Upper Bracket",
	models.BracketLower:      "Lower Bracket",
	models.BracketThirdPlace: "Third Place",
	models.BracketGrandFinal: "Grand Final",
	models.BracketReset:      "Grand Final Reset",
	models.BracketRoundRobin: "Round Robin",
	models.BracketSwiss:      "Swiss Stage",
	models.BracketGroup:      "Group Stage",
}

// sectionKey - секция вида: тип сетки и, для группового этапа, номер группы.
type sectionKey struct {
	bracketType models.BracketType
	group       int
}

// BuildView groups matches into sections and rounds for display. It never mutates its input.
func BuildView(t *models.Tournament, matches []*models.Match, seeds []models.SeedAssignment, teams []models.Team) *BracketView {
	seedByTeam := make(map[int]int, len(seeds))
	for _, s := range seeds {
		seedByTeam[s.TeamID] = s.Seed
	}
	teamByID := make(map[int]models.Team, len(teams))
	for _, tm := range teams {
		teamByID[tm.ID] = tm
	}
	teamView := func(id *int) *TeamView {
		if id == nil {
			return nil
		}
		tv := &TeamView{ID: *id, Seed: seedByTeam[*id]}
		if tm, ok := teamByID[*id]; ok {
			tv.Name = tm.Name
			tv.ShortName = tm.ShortName
			tv.LogoURL = tm.LogoURL
		} else {
			tv.Name = fmt.Sprintf("Team %d", *id)
		}
		return tv
	}

	view := &BracketView{
		TournamentID: t.ID,
		Name:         t.Name,
		Format:       t.Format,
		Status:       t.Status,
		TotalTeams:   t.TotalTeams,
		TotalRounds:  t.TotalRounds,
		Sections:     make([]SectionView, 0),
	}

	grouped := make(map[sectionKey]map[int][]MatchView)
	groupsOf := make(map[models.BracketType][]int)
	lastRound := make(map[models.BracketType]int)
	for _, m := range matches {
		key := sectionKey{bracketType: m.BracketType}
		if m.GroupNumber != nil {
			key.group = *m.GroupNumber
		}
		if grouped[key] == nil {
			grouped[key] = make(map[int][]MatchView)
			groupsOf[m.BracketType] = append(groupsOf[m.BracketType], key.group)
		}
		grouped[key][m.Round] = append(grouped[key][m.Round], MatchView{
			ID:                m.ID,
			Round:             m.Round,
			Position:          m.Position,
			BracketType:       m.BracketType,
			GroupNumber:       m.GroupNumber,
			Status:            m.Status,
			Team1:             teamView(m.Team1ID),
			Team2:             teamView(m.Team2ID),
			Team1Score:        m.Team1Score,
			Team2Score:        m.Team2Score,
			BestOf:            m.BestOf,
			Maps:              m.Maps,
			WinnerID:          m.WinnerID(),
			CompletedAt:       m.CompletedAt,
			WinnerNextMatchID: m.WinnerNextMatchID,
			LoserNextMatchID:  m.LoserNextMatchID,
		})
		if m.Round > lastRound[m.BracketType] {
			lastRound[m.BracketType] = m.Round
		}

		view.Progress.TotalMatches++
		if m.Status == models.MatchStatusCompleted {
			view.Progress.CompletedMatches++
		}
		if m.Status == models.MatchStatusScheduled && (view.Progress.CurrentRound == 0 || m.Round < view.Progress.CurrentRound) {
			view.Progress.CurrentRound = m.Round
		}
	}
	if view.Progress.TotalMatches > 0 {
		view.Progress.Percent = float64(view.Progress.CompletedMatches) * 100 / float64(view.Progress.TotalMatches)
	}

	totalRounds := lastRound[models.BracketMain]
	if lastRound[models.BracketUpper] > 0 {
		totalRounds = lastRound[models.BracketUpper]
	}

	for _, bt := range sectionOrder {
		groups := groupsOf[bt]
		sort.Ints(groups)
		for _, group := range groups {
			byRound := grouped[sectionKey{bracketType: bt, group: group}]
			rounds := make([]int, 0, len(byRound))
			for r := range byRound {
				rounds = append(rounds, r)
			}
			sort.Ints(rounds)

			section := SectionView{BracketType: bt, Name: sectionNames[bt], Rounds: make([]RoundView, 0, len(rounds))}
			if group > 0 {
				section.GroupNumber = intPtr(group)
				section.Name = GroupName(group)
			}
			for _, r := range rounds {
				ms := byRound[r]
				sort.Slice(ms, func(i, j int) bool { return ms[i].Position < ms[j].Position })
				rt := totalRounds
				if bt == models.BracketLower {
					rt = lastRound[models.BracketLower]
				}
				section.Rounds = append(section.Rounds, RoundView{
					Number:  r,
					Name:    RoundName(bt, r, rt),
					Matches: ms,
				})
			}
			view.Sections = append(view.Sections, section)
		}
	}
	return view
}

// RoundName derives a display name from the rounds remaining in the bracket.
func RoundName(bt models.BracketType, round, totalRounds int) string {
	switch bt {
	case models.BracketGrandFinal:
		return "Grand Final"
	case models.BracketReset:
		return "Grand Final Reset"
	case models.BracketThirdPlace:
		return "Third Place Match"
	case models.BracketLower:
		if round == totalRounds {
			return "Lower Final"
		}
		return fmt.Sprintf("Lower Round %d", round)
	case models.BracketUpper:
		switch totalRounds - round + 1 {
		case 1:
			return "Upper Final"
		case 2:
			return "Upper Semifinals"
		case 3:
			return "Upper Quarterfinals"
		}
		return fmt.Sprintf("Upper Round %d", round)
	case models.BracketMain:
		switch totalRounds - round + 1 {
		case 1:
			return "Grand Final"
		case 2:
			return "Semifinals"
		case 3:
			return "Quarterfinals"
		case 4:
			return "Round of 16"
		case 5:
			return "Round of 32"
		}
	}
	return fmt.Sprintf("Round %d", round)
}
