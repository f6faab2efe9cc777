package repo

import (
	"context"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
)

// MeetingRepository persists meeting aggregates as whole documents.
//
// Save is atomic per meeting: a concurrent reader sees either the pre-save
// or post-save snapshot, never a torn one. The turn coordinator guarantees
// the core never issues overlapping writes for one meeting ID.
type MeetingRepository interface {
	Save(ctx context.Context, meeting *entity.Meeting) error
	Get(ctx context.Context, id string) (*entity.Meeting, error)
	List(ctx context.Context) ([]*entity.Meeting, error)
	Delete(ctx context.Context, id string) error
}
