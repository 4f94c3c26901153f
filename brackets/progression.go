package brackets

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/bracket-engine/models"
)

// ScoreReport is a submitted series result.
type ScoreReport struct {
	Team1Score int
	Team2Score int
	Maps       []models.MapResult
}

// Outcome describes everything a result changed. Callers persist Match, Updated and Created,
// then replace standings with Standings.
type Outcome struct {
	Match                *models.Match
	Updated              []*models.Match
	Created              []*models.Match
	Standings            []*models.StandingEntry
	Warnings             []error
	AdvancementTriggered bool
	TournamentCompleted  bool
}

// Engine drives generation and progression over in-memory tournament state. It holds no
// state of its own; callers serialize access per tournament.
type Engine struct {
	registry *Registry
	logger   *slog.Logger
	now      func() time.Time
}

func NewEngine(registry *Registry, logger *slog.Logger) *Engine {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		registry: registry,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NormalizeOptions fills defaults and rejects combinations the formats cannot honour.
func NormalizeOptions(format models.TournamentFormat, opts models.BracketOptions) (models.BracketOptions, error) {
	if opts.SeedingMethod == "" {
		opts.SeedingMethod = models.SeedingRating
	}
	if opts.BestOf == 0 {
		opts.BestOf = 1
	}
	if opts.BestOf < 0 || opts.BestOf%2 == 0 {
		return opts, fmt.Errorf("%w: best_of must be a positive odd number, got %d", ErrInvalidInput, opts.BestOf)
	}
	if opts.ByePlacement == "" {
		opts.ByePlacement = models.ByePlacementSeedingChart
	}
	if opts.ByePlacement != models.ByePlacementSeedingChart && opts.ByePlacement != models.ByePlacementEvenStep {
		return opts, fmt.Errorf("%w: unknown bye placement %q", ErrInvalidInput, opts.ByePlacement)
	}
	if (format == models.FormatRoundRobin || format == models.FormatGroupStage) && opts.RoundRobinLegs == 0 {
		opts.RoundRobinLegs = 1
	}
	if format == models.FormatGroupStage && opts.AdvancePerGroup == 0 {
		opts.AdvancePerGroup = defaultAdvancePerGroup
	}
	if opts.AdvancePerGroup < 0 {
		return opts, fmt.Errorf("%w: advance_per_group must not be negative", ErrInvalidInput)
	}
	if opts.GroupCount < 0 {
		return opts, fmt.Errorf("%w: group_count must not be negative", ErrInvalidInput)
	}
	if opts.RoundRobinLegs < 0 || opts.RoundRobinLegs > 2 {
		return opts, fmt.Errorf("%w: round_robin_legs must be 1 or 2, got %d", ErrInvalidInput, opts.RoundRobinLegs)
	}
	if opts.SwissRounds < 0 {
		return opts, fmt.Errorf("%w: swiss_rounds must not be negative", ErrInvalidInput)
	}
	if opts.AllowDraws && format.IsElimination() {
		return opts, fmt.Errorf("%w: draws are not allowed in %s", ErrInvalidInput, format)
	}
	if opts.ThirdPlaceMatch && format != models.FormatSingleElimination {
		opts.ThirdPlaceMatch = false
	}
	if opts.BracketReset && format != models.FormatDoubleElimination {
		opts.BracketReset = false
	}
	return opts, nil
}

// Generate builds the initial match graph for teamIDs given in seed order.
func (e *Engine) Generate(format models.TournamentFormat, params GenerateParams) (*Bracket, error) {
	strategy, err := e.registry.Strategy(format)
	if err != nil {
		return nil, err
	}
	if err := validateTeamIDs(params.TeamIDs); err != nil {
		return nil, err
	}
	if len(params.TeamIDs) < strategy.MinTeams() {
		return nil, fmt.Errorf("%w: %s needs at least %d teams, got %d", ErrInsufficientTeams, format, strategy.MinTeams(), len(params.TeamIDs))
	}
	opts, err := NormalizeOptions(format, params.Options)
	if err != nil {
		return nil, err
	}
	params.Options = opts

	bracket, err := strategy.Generate(params)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("bracket generated",
		slog.String("format", string(format)),
		slog.Int("teams", len(params.TeamIDs)),
		slog.Int("matches", len(bracket.Matches)),
		slog.Int("total_rounds", bracket.TotalRounds))
	return bracket, nil
}

// CompleteMatch records a result and applies its consequences to state. On error state is
// unchanged only for validation failures; any other error means state must be discarded.
func (e *Engine) CompleteMatch(state *State, matchID int, report ScoreReport) (*Outcome, error) {
	strategy, err := e.registry.Strategy(state.Tournament.Format)
	if err != nil {
		return nil, err
	}
	match := state.Match(matchID)
	if match == nil {
		return nil, fmt.Errorf("%w: id %d", ErrMatchNotFound, matchID)
	}
	if err := validateResult(state.Tournament, match, report); err != nil {
		return nil, err
	}

	completedAt := e.now()
	match.Team1Score = intPtr(report.Team1Score)
	match.Team2Score = intPtr(report.Team2Score)
	match.Maps = models.MapResults(report.Maps)
	match.Status = models.MatchStatusCompleted
	match.CompletedAt = &completedAt

	return e.apply(state, strategy, match)
}

// CancelMatch moves a pending or scheduled match to cancelled. Nobody advances from it, so in
// elimination formats only matches that feed no other match (finals, third place) can be cancelled.
func (e *Engine) CancelMatch(state *State, matchID int) (*Outcome, error) {
	strategy, err := e.registry.Strategy(state.Tournament.Format)
	if err != nil {
		return nil, err
	}
	match := state.Match(matchID)
	if match == nil {
		return nil, fmt.Errorf("%w: id %d", ErrMatchNotFound, matchID)
	}
	switch match.Status {
	case models.MatchStatusCompleted:
		return nil, fmt.Errorf("%w: match %d", ErrAlreadyCompleted, match.ID)
	case models.MatchStatusCancelled:
		return nil, fmt.Errorf("%w: match %d is already cancelled", ErrMatchNotPlayable, match.ID)
	}
	if state.Tournament.Format.IsElimination() && (match.WinnerNextMatchID != nil || match.LoserNextMatchID != nil) {
		return nil, fmt.Errorf("%w: match %d feeds later matches and cannot be cancelled", ErrMatchNotPlayable, match.ID)
	}
	match.Status = models.MatchStatusCancelled
	return e.apply(state, strategy, match)
}

// Standings recomputes the table from scratch.
func (e *Engine) Standings(state *State) ([]*models.StandingEntry, error) {
	strategy, err := e.registry.Strategy(state.Tournament.Format)
	if err != nil {
		return nil, err
	}
	return strategy.ComputeStandings(state), nil
}

func (e *Engine) apply(state *State, strategy BracketStrategy, match *models.Match) (*Outcome, error) {
	adv, err := strategy.Advance(state, match)
	if err != nil {
		return nil, err
	}
	state.Matches = append(state.Matches, adv.Created...)

	for _, w := range adv.Warnings {
		e.logger.Warn("bracket integrity warning",
			slog.Int("tournament_id", state.Tournament.ID),
			slog.Int("match_id", match.ID),
			slog.Any("error", w))
	}

	return &Outcome{
		Match:                match,
		Updated:              adv.Updated,
		Created:              adv.Created,
		Standings:            strategy.ComputeStandings(state),
		Warnings:             adv.Warnings,
		AdvancementTriggered: adv.Triggered,
		TournamentCompleted:  allTerminal(state.Matches),
	}, nil
}

func validateResult(t *models.Tournament, match *models.Match, report ScoreReport) error {
	switch match.Status {
	case models.MatchStatusCompleted:
		return fmt.Errorf("%w: match %d", ErrAlreadyCompleted, match.ID)
	case models.MatchStatusCancelled:
		return fmt.Errorf("%w: match %d is cancelled", ErrMatchNotPlayable, match.ID)
	}
	if !match.HasBothTeams() {
		return fmt.Errorf("%w: match %d is waiting for teams", ErrMatchNotPlayable, match.ID)
	}
	if report.Team1Score < 0 || report.Team2Score < 0 {
		return fmt.Errorf("%w: scores must not be negative", ErrInvalidScore)
	}
	if report.Team1Score == report.Team2Score {
		drawsAllowed := t.Options.AllowDraws && !t.Format.IsElimination()
		if !drawsAllowed {
			return fmt.Errorf("%w: draws are not allowed (%d-%d)", ErrInvalidScore, report.Team1Score, report.Team2Score)
		}
	}
	for i, mp := range report.Maps {
		if mp.Team1Rounds < 0 || mp.Team2Rounds < 0 {
			return fmt.Errorf("%w: map %d has negative rounds", ErrInvalidScore, i+1)
		}
	}
	return nil
}

func allTerminal(matches []*models.Match) bool {
	if len(matches) == 0 {
		return false
	}
	for _, m := range matches {
		if !m.Status.IsTerminal() {
			return false
		}
	}
	return true
}
