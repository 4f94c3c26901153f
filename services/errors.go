package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ошибки валидации
	ErrValidationFailed        = errors.New("validation failed")
	ErrTournamentNameRequired  = errors.New("tournament name is required")
	ErrTeamNameRequired        = errors.New("team name is required")
	ErrTournamentFormatMissing = errors.New("tournament format is not set")

	// Ошибки конфликтов
	ErrTeamNameConflict    = errors.New("team name is already in use")
	ErrConcurrencyConflict = errors.New("tournament was modified concurrently, retry the request")
	ErrTournamentCompleted = errors.New("tournament is already completed")
	ErrBracketNotGenerated = errors.New("bracket has not been generated for this tournament")

	// Ошибки, специфичные для сущностей
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrTeamNotFound       = errors.New("team not found")
)
