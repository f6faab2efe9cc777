package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jinzhu/copier"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/pkg/errno"
)

// MeetingStore implements repo.MeetingRepository in process memory.
type MeetingStore struct {
	mu       sync.RWMutex
	meetings map[string]*entity.Meeting
}

// NewMeetingStore creates an empty in-memory MeetingStore.
func NewMeetingStore() *MeetingStore {
	return &MeetingStore{meetings: make(map[string]*entity.Meeting)}
}

func (s *MeetingStore) Save(_ context.Context, meeting *entity.Meeting) error {
	stored := &entity.Meeting{}
	if err := copier.CopyWithOption(stored, meeting, copier.Option{DeepCopy: true}); err != nil {
		return fmt.Errorf("failed to copy meeting: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetings[meeting.ID] = stored
	return nil
}

func (s *MeetingStore) Get(_ context.Context, id string) (*entity.Meeting, error) {
	s.mu.RLock()
	stored, ok := s.meetings[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errno.ErrMeetingNotFound
	}
	meeting := &entity.Meeting{}
	if err := copier.CopyWithOption(meeting, stored, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("failed to copy meeting: %w", err)
	}
	return meeting, nil
}

func (s *MeetingStore) List(_ context.Context) ([]*entity.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meetings := make([]*entity.Meeting, 0, len(s.meetings))
	for _, stored := range s.meetings {
		meeting := &entity.Meeting{}
		if err := copier.CopyWithOption(meeting, stored, copier.Option{DeepCopy: true}); err != nil {
			return nil, fmt.Errorf("failed to copy meeting: %w", err)
		}
		meetings = append(meetings, meeting)
	}
	return meetings, nil
}

func (s *MeetingStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meetings[id]; !ok {
		return errno.ErrMeetingNotFound
	}
	delete(s.meetings, id)
	return nil
}
