package brackets

import (
	"fmt"
	"sort"

	"github.com/Dosada05/bracket-engine/models"
)

type GenerateParams struct {
	Tournament *models.Tournament
	// TeamIDs в порядке посева: индекс 0 = seed 1.
	TeamIDs []int
	Options models.BracketOptions
}

// SlotRef points at a team slot of another generated match.
type SlotRef struct {
	UID  string
	Slot int
}

// BracketMatch is a generated match before it has a database id.
type BracketMatch struct {
	UID         string
	Round       int
	Position    int
	BracketType models.BracketType
	GroupNumber *int

	Team1ID *int
	Team2ID *int

	WinnerTo *SlotRef
	LoserTo  *SlotRef
}

// ToModel converts a generated match into a row without links; links need database ids.
func (bm *BracketMatch) ToModel(tournamentID, bestOf int) *models.Match {
	m := &models.Match{
		TournamentID: tournamentID,
		Round:        bm.Round,
		Position:     bm.Position,
		BracketType:  bm.BracketType,
		GroupNumber:  bm.GroupNumber,
		Team1ID:      bm.Team1ID,
		Team2ID:      bm.Team2ID,
		Status:       models.MatchStatusPending,
		BestOf:       bestOf,
	}
	if m.HasBothTeams() {
		m.Status = models.MatchStatusScheduled
	}
	return m
}

// ResolveLinks maps the UID links of bm onto database ids.
func (bm *BracketMatch) ResolveLinks(ids map[string]int) (winnerID, winnerSlot, loserID, loserSlot *int, err error) {
	if bm.WinnerTo != nil {
		id, ok := ids[bm.WinnerTo.UID]
		if !ok {
			return nil, nil, nil, nil, fmt.Errorf("%w: winner of %s links to unknown match %s", ErrBracketIntegrity, bm.UID, bm.WinnerTo.UID)
		}
		winnerID, winnerSlot = intPtr(id), intPtr(bm.WinnerTo.Slot)
	}
	if bm.LoserTo != nil {
		id, ok := ids[bm.LoserTo.UID]
		if !ok {
			return nil, nil, nil, nil, fmt.Errorf("%w: loser of %s links to unknown match %s", ErrBracketIntegrity, bm.UID, bm.LoserTo.UID)
		}
		loserID, loserSlot = intPtr(id), intPtr(bm.LoserTo.Slot)
	}
	return winnerID, winnerSlot, loserID, loserSlot, nil
}

type Bracket struct {
	Format      models.TournamentFormat
	Matches     []*BracketMatch
	TotalRounds int
}

// Advancement is what a strategy changed after a match result was recorded.
type Advancement struct {
	Updated   []*models.Match
	Created   []*models.Match
	Warnings  []error
	Triggered bool
}

// BracketStrategy реализует один формат турнира целиком: генерацию, продвижение и таблицу.
type BracketStrategy interface {
	Format() models.TournamentFormat
	MinTeams() int
	Generate(params GenerateParams) (*Bracket, error)
	Advance(state *State, match *models.Match) (*Advancement, error)
	ComputeStandings(state *State) []*models.StandingEntry
}

// State is the in-memory graph of one tournament.
type State struct {
	Tournament *models.Tournament
	Matches    []*models.Match
	Seeds      []models.SeedAssignment
}

func (s *State) Match(id int) *models.Match {
	for _, m := range s.Matches {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (s *State) roundMatches(bt models.BracketType, round int) []*models.Match {
	out := make([]*models.Match, 0)
	for _, m := range s.Matches {
		if m.BracketType == bt && m.Round == round {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (s *State) maxRound(bt models.BracketType) int {
	last := 0
	for _, m := range s.Matches {
		if m.BracketType == bt && m.Round > last {
			last = m.Round
		}
	}
	return last
}

func (s *State) seedOf(teamID int) int {
	for _, sa := range s.Seeds {
		if sa.TeamID == teamID {
			return sa.Seed
		}
	}
	return len(s.Seeds) + teamID
}

// teamIDs returns the roster in seed order, falling back to teams seen in matches.
func (s *State) teamIDs() []int {
	if len(s.Seeds) > 0 {
		seeds := make([]models.SeedAssignment, len(s.Seeds))
		copy(seeds, s.Seeds)
		sort.Slice(seeds, func(i, j int) bool { return seeds[i].Seed < seeds[j].Seed })
		ids := make([]int, len(seeds))
		for i, sa := range seeds {
			ids[i] = sa.TeamID
		}
		return ids
	}
	seen := make(map[int]bool)
	ids := make([]int, 0)
	for _, m := range s.Matches {
		for _, t := range []*int{m.Team1ID, m.Team2ID} {
			if t != nil && !seen[*t] {
				seen[*t] = true
				ids = append(ids, *t)
			}
		}
	}
	sort.Ints(ids)
	return ids
}

type Registry struct {
	strategies map[models.TournamentFormat]BracketStrategy
}

func NewRegistry(strategies ...BracketStrategy) *Registry {
	r := &Registry{strategies: make(map[models.TournamentFormat]BracketStrategy, len(strategies))}
	for _, s := range strategies {
		r.strategies[s.Format()] = s
	}
	return r
}

// DefaultRegistry registers all four formats with the greedy Swiss pairer.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewSingleEliminationStrategy(),
		NewDoubleEliminationStrategy(),
		NewRoundRobinStrategy(),
		NewSwissStrategy(GreedySwissPairer{}),
		NewGroupStageStrategy(),
	)
}

func (r *Registry) Strategy(format models.TournamentFormat) (BracketStrategy, error) {
	s, ok := r.strategies[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return s, nil
}

func intPtr(v int) *int {
	return &v
}

func validateTeamIDs(ids []int) error {
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return fmt.Errorf("%w: team id must be positive, got %d", ErrInvalidInput, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate team id %d", ErrInvalidInput, id)
		}
		seen[id] = true
	}
	return nil
}
