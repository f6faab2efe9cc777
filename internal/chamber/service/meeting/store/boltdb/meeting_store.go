package boltdb

import (
	"context"
	"fmt"

	"github.com/boltdb/bolt"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/pkg/errno"
	"github.com/kiosk404/roundtable/pkg/utils/json"
)

// MeetingStore implements repo.MeetingRepository on BoltDB.
//
// Each meeting is one document; a Save is one Update transaction, which
// gives the per-meeting atomicity the turn engine's commit point relies on.
type MeetingStore struct {
	db *bolt.DB
}

// NewMeetingStore creates a BoltDB-backed MeetingStore.
func NewMeetingStore(db *DB) *MeetingStore {
	return &MeetingStore{db: db.Bolt()}
}

// Save upserts a meeting document atomically.
func (s *MeetingStore) Save(_ context.Context, meeting *entity.Meeting) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeetingStore)
		data, err := json.Marshal(meeting)
		if err != nil {
			return fmt.Errorf("failed to marshal meeting: %w", err)
		}
		return b.Put([]byte(meeting.ID), data)
	})
}

// Get retrieves a meeting by its ID.
func (s *MeetingStore) Get(_ context.Context, id string) (*entity.Meeting, error) {
	var meeting entity.Meeting
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeetingStore)
		data := b.Get([]byte(id))
		if data == nil {
			return errno.ErrMeetingNotFound
		}
		if err := json.Unmarshal(data, &meeting); err != nil {
			return fmt.Errorf("failed to unmarshal meeting: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &meeting, nil
}

// List returns all meetings in the store.
func (s *MeetingStore) List(_ context.Context) ([]*entity.Meeting, error) {
	var meetings []*entity.Meeting
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeetingStore)
		return b.ForEach(func(k, v []byte) error {
			var meeting entity.Meeting
			if err := json.Unmarshal(v, &meeting); err != nil {
				return fmt.Errorf("failed to unmarshal meeting: %w", err)
			}
			meetings = append(meetings, &meeting)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	return meetings, nil
}

// Delete removes a meeting from the store.
func (s *MeetingStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeetingStore)
		if b.Get([]byte(id)) == nil {
			return errno.ErrMeetingNotFound
		}
		return b.Delete([]byte(id))
	})
}
