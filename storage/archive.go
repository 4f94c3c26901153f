package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/models"
)

// BracketSnapshot - итоговое состояние турнира, которое уходит в архив.
type BracketSnapshot struct {
	Bracket    *brackets.BracketView   `json:"bracket"`
	Standings  []*models.StandingEntry `json:"standings"`
	ArchivedAt time.Time               `json:"archived_at"`
}

// BracketArchiver stores the final state of a completed tournament.
type BracketArchiver interface {
	Archive(ctx context.Context, snapshot BracketSnapshot) (*UploadResult, error)
}

type bracketArchiver struct {
	uploader FileUploader
}

func NewBracketArchiver(uploader FileUploader) BracketArchiver {
	if uploader == nil {
		return noopArchiver{}
	}
	return &bracketArchiver{uploader: uploader}
}

func ArchiveKey(tournamentID int, archivedAt time.Time) string {
	return fmt.Sprintf("brackets/tournament_%d/final_%s.json", tournamentID, archivedAt.UTC().Format("20060102T150405Z"))
}

func (a *bracketArchiver) Archive(ctx context.Context, snapshot BracketSnapshot) (*UploadResult, error) {
	if snapshot.Bracket == nil {
		return nil, fmt.Errorf("archive: empty bracket")
	}
	if snapshot.ArchivedAt.IsZero() {
		snapshot.ArchivedAt = time.Now().UTC()
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("archive: marshal snapshot: %w", err)
	}
	key := ArchiveKey(snapshot.Bracket.TournamentID, snapshot.ArchivedAt)
	return a.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
}

// noopArchiver используется, когда R2 не настроен.
type noopArchiver struct{}

func (noopArchiver) Archive(context.Context, BracketSnapshot) (*UploadResult, error) {
	return nil, nil
}
