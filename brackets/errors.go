package brackets

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientTeams = errors.New("insufficient teams for format")
	ErrUnsupportedFormat = errors.New("unsupported tournament format")
	ErrAlreadyCompleted  = errors.New("match already completed")
	ErrInvalidScore      = errors.New("invalid score")
	ErrBracketIntegrity  = errors.New("bracket integrity error")
	ErrMatchNotPlayable  = errors.New("match is not playable")
	ErrMatchNotFound     = errors.New("match not found in bracket")
)
