package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/entity"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/repo"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/domain/service/runtime"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/pkg/errno"
	"github.com/kiosk404/roundtable/internal/chamber/service/meeting/service/broadcast"
	"github.com/kiosk404/roundtable/pkg/logger"
)

type meetingServiceImpl struct {
	meetingRepo repo.MeetingRepository
	agentRepo   repo.AgentRepository
	coordinator *runtime.Coordinator
	hub         *broadcast.Hub
	minutes     *MinutesGenerator
	mindMaps    *MindMapGenerator
}

// NewMeetingService creates the meeting state-machine service.
func NewMeetingService(
	meetingRepo repo.MeetingRepository,
	agentRepo repo.AgentRepository,
	coordinator *runtime.Coordinator,
	hub *broadcast.Hub,
	minutes *MinutesGenerator,
	mindMaps *MindMapGenerator,
) MeetingService {
	return &meetingServiceImpl{
		meetingRepo: meetingRepo,
		agentRepo:   agentRepo,
		coordinator: coordinator,
		hub:         hub,
		minutes:     minutes,
		mindMaps:    mindMaps,
	}
}

func (s *meetingServiceImpl) CreateMeeting(ctx context.Context, req *CreateMeetingRequest) (*entity.Meeting, error) {
	if len(req.ParticipantIDs) == 0 {
		return nil, errno.Validationf("meeting needs at least one participant")
	}

	now := time.Now()
	meeting := &entity.Meeting{
		ID:        uuid.New().String(),
		Topic:     strings.TrimSpace(req.Topic),
		Moderator: req.Moderator,
		Status:    entity.StatusActive,
		Config:    entity.DefaultMeetingConfig(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Config != nil {
		meeting.Config = mergeConfig(*req.Config)
	}
	if meeting.Moderator.Type == "" {
		meeting.Moderator.Type = entity.ModeratorUser
	}

	// Snapshot participants so later registry edits do not retroactively
	// alter meeting history.
	for _, agentID := range req.ParticipantIDs {
		agent, err := s.agentRepo.Get(ctx, agentID)
		if err != nil {
			return nil, err
		}
		snapshot := &entity.Agent{}
		if err := copier.CopyWithOption(snapshot, agent, copier.Option{DeepCopy: true}); err != nil {
			return nil, fmt.Errorf("failed to snapshot agent %s: %w", agentID, err)
		}
		meeting.Participants = append(meeting.Participants, snapshot)
	}

	for _, spec := range req.Agenda {
		item, err := newAgendaItem(spec.Title, spec.Description)
		if err != nil {
			return nil, err
		}
		meeting.Agenda = append(meeting.Agenda, item)
	}

	if err := meeting.Validate(); err != nil {
		return nil, err
	}
	if err := s.meetingRepo.Save(ctx, meeting); err != nil {
		return nil, fmt.Errorf("%w: %v", errno.ErrPersistence, err)
	}
	logger.InfoX("meeting", "created meeting %s (%q, %d participants)", meeting.ID, meeting.Topic, len(meeting.Participants))
	return meeting, nil
}

func (s *meetingServiceImpl) GetMeeting(ctx context.Context, id string) (*entity.Meeting, error) {
	return s.meetingRepo.Get(ctx, id)
}

func (s *meetingServiceImpl) ListMeetings(ctx context.Context) ([]*entity.Meeting, error) {
	return s.meetingRepo.List(ctx)
}

func (s *meetingServiceImpl) DeleteMeeting(ctx context.Context, id string) error {
	if _, err := s.meetingRepo.Get(ctx, id); err != nil {
		return err
	}
	// Cancel in-flight work before the document disappears.
	s.coordinator.Release(id)
	return s.meetingRepo.Delete(ctx, id)
}

func (s *meetingServiceImpl) StartMeeting(ctx context.Context, id string) error {
	return s.transition(ctx, id, func(meeting *entity.Meeting) (bool, error) {
		switch meeting.Status {
		case entity.StatusActive:
			return false, nil
		case entity.StatusPaused:
			meeting.Status = entity.StatusActive
			return true, nil
		default:
			return false, fmt.Errorf("%w: cannot start an ended meeting", errno.ErrMeetingEnded)
		}
	})
}

func (s *meetingServiceImpl) PauseMeeting(ctx context.Context, id string) error {
	return s.transition(ctx, id, func(meeting *entity.Meeting) (bool, error) {
		switch meeting.Status {
		case entity.StatusPaused:
			return false, nil
		case entity.StatusActive:
			meeting.Status = entity.StatusPaused
			return true, nil
		default:
			return false, fmt.Errorf("%w: cannot pause an ended meeting", errno.ErrMeetingEnded)
		}
	})
}

func (s *meetingServiceImpl) EndMeeting(ctx context.Context, id string, autoGenerateMinutes bool) error {
	// Cancel any in-flight turn before taking the lock it holds.
	s.coordinator.StopTurn(id)

	return s.coordinator.WithLock(id, func() error {
		meeting, err := s.meetingRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if meeting.Status == entity.StatusEnded {
			return nil
		}

		meeting.Status = entity.StatusEnded
		meeting.UpdatedAt = time.Now()

		var minutesVersion *entity.MinutesVersion
		if autoGenerateMinutes && len(meeting.Messages) > 0 {
			minutesVersion, err = s.minutes.Generate(ctx, meeting, "")
			if err != nil {
				// A failed summary must not block ending the meeting.
				logger.WarnX("meeting", "auto minutes for meeting %s failed: %v", id, err)
				minutesVersion = nil
			}
		}

		if err := s.meetingRepo.Save(ctx, meeting); err != nil {
			return fmt.Errorf("%w: %v", errno.ErrPersistence, err)
		}

		s.hub.Publish(&entity.MeetingEvent{
			Type:      entity.EventStatusChange,
			MeetingID: id,
			Status:    entity.StatusEnded,
		})
		if minutesVersion != nil {
			s.hub.Publish(&entity.MeetingEvent{
				Type:           entity.EventMinutesGenerated,
				MeetingID:      id,
				MinutesVersion: minutesVersion.Version,
			})
		}
		return nil
	})
}

func (s *meetingServiceImpl) UpdateConfig(ctx context.Context, id string, cfg entity.MeetingConfig) error {
	return s.coordinator.WithLock(id, func() error {
		meeting, err := s.meetingRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if meeting.Status == entity.StatusEnded {
			return fmt.Errorf("%w: cannot reconfigure an ended meeting", errno.ErrMeetingEnded)
		}
		meeting.Config = mergeConfig(cfg)
		if err := meeting.Validate(); err != nil {
			return err
		}
		meeting.UpdatedAt = time.Now()
		if err := s.meetingRepo.Save(ctx, meeting); err != nil {
			return fmt.Errorf("%w: %v", errno.ErrPersistence, err)
		}
		return nil
	})
}

func (s *meetingServiceImpl) AddUserMessage(ctx context.Context, id, content string) (*entity.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errno.Validationf("message content cannot be empty")
	}

	var msg *entity.Message
	err := s.coordinator.WithLock(id, func() error {
		meeting, err := s.meetingRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if meeting.Status != entity.StatusActive {
			return fmt.Errorf("%w: cannot add message in %s state", errno.ErrMeetingNotActive, meeting.Status)
		}
		if limit := meeting.MaxMessageLength(); len([]rune(content)) > limit {
			return errno.Validationf("message exceeds the %d character limit", limit)
		}

		msg = entity.NewUserMessage(content, meeting.CurrentRound, meeting.NextTimestamp(time.Now()))
		mentions := runtime.ParseMentions(content, meeting.Participants)
		for i := range mentions {
			mentions[i].MessageID = msg.ID
		}
		msg.Mentions = mentions

		meeting.Messages = append(meeting.Messages, msg)
		meeting.UpdatedAt = time.Now()
		if err := s.meetingRepo.Save(ctx, meeting); err != nil {
			return fmt.Errorf("%w: %v", errno.ErrPersistence, err)
		}

		s.hub.Publish(&entity.MeetingEvent{
			Type:      entity.EventNewMessage,
			MeetingID: id,
			MessageID: msg.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *meetingServiceImpl) RequestTurn(ctx context.Context, id, agentID string, mode runtime.TurnMode) (*entity.Message, error) {
	return s.coordinator.RunTurn(ctx, id, agentID, mode)
}

func (s *meetingServiceImpl) RunRound(ctx context.Context, id string, mode runtime.TurnMode) ([]*entity.Message, error) {
	meeting, err := s.meetingRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if meeting.Status != entity.StatusActive {
		return nil, fmt.Errorf("%w: cannot run a round in %s state", errno.ErrMeetingNotActive, meeting.Status)
	}
	return s.coordinator.RunRound(ctx, meeting, mode)
}

func (s *meetingServiceImpl) StopTurn(id string) {
	s.coordinator.StopTurn(id)
}

func (s *meetingServiceImpl) AddAgendaItem(ctx context.Context, id, title, description string) (*entity.AgendaItem, error) {
	var item *entity.AgendaItem
	err := s.mutateActive(ctx, id, func(meeting *entity.Meeting) error {
		var err error
		item, err = newAgendaItem(title, description)
		if err != nil {
			return err
		}
		meeting.Agenda = append(meeting.Agenda, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *meetingServiceImpl) MarkAgendaCompleted(ctx context.Context, id, itemID string) error {
	return s.mutateActive(ctx, id, func(meeting *entity.Meeting) error {
		item := meeting.FindAgendaItem(itemID)
		if item == nil {
			return fmt.Errorf("%w: %s", errno.ErrAgendaItemNotFound, itemID)
		}
		item.Completed = true
		return nil
	})
}

func (s *meetingServiceImpl) RemoveAgendaItem(ctx context.Context, id, itemID string) error {
	return s.mutateActive(ctx, id, func(meeting *entity.Meeting) error {
		for i, item := range meeting.Agenda {
			if item.ID == itemID {
				meeting.Agenda = append(meeting.Agenda[:i], meeting.Agenda[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", errno.ErrAgendaItemNotFound, itemID)
	})
}

func (s *meetingServiceImpl) GenerateMinutes(ctx context.Context, id, generatorID string) (*entity.MinutesVersion, error) {
	var version *entity.MinutesVersion
	err := s.coordinator.WithLock(id, func() error {
		meeting, err := s.meetingRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		version, err = s.minutes.Generate(ctx, meeting, generatorID)
		if err != nil {
			return err
		}
		if err := s.meetingRepo.Save(ctx, meeting); err != nil {
			return fmt.Errorf("%w: %v", errno.ErrPersistence, err)
		}
		s.hub.Publish(&entity.MeetingEvent{
			Type:           entity.EventMinutesGenerated,
			MeetingID:      id,
			MinutesVersion: version.Version,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

func (s *meetingServiceImpl) UpdateMinutes(ctx context.Context, id, content, editorID string) (*entity.MinutesVersion, error) {
	var version *entity.MinutesVersion
	err := s.coordinator.WithLock(id, func() error {
		meeting, err := s.meetingRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		version, err = s.minutes.Update(meeting, content, editorID)
		if err != nil {
			return err
		}
		if err := s.meetingRepo.Save(ctx, meeting); err != nil {
			return fmt.Errorf("%w: %v", errno.ErrPersistence, err)
		}
		s.hub.Publish(&entity.MeetingEvent{
			Type:           entity.EventMinutesGenerated,
			MeetingID:      id,
			MinutesVersion: version.Version,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

func (s *meetingServiceImpl) MinutesHistory(ctx context.Context, id string) ([]*entity.MinutesVersion, error) {
	meeting, err := s.meetingRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return meeting.MinutesHistory, nil
}

func (s *meetingServiceImpl) GenerateMindMap(ctx context.Context, id, generatorID string) (*entity.MindMap, error) {
	var mm *entity.MindMap
	err := s.coordinator.WithLock(id, func() error {
		meeting, err := s.meetingRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		mm, err = s.mindMaps.Generate(ctx, meeting, generatorID)
		if err != nil {
			return err
		}
		if err := s.meetingRepo.Save(ctx, meeting); err != nil {
			return fmt.Errorf("%w: %v", errno.ErrPersistence, err)
		}
		s.hub.Publish(&entity.MeetingEvent{
			Type:           entity.EventMindMapGenerated,
			MeetingID:      id,
			MindMapVersion: mm.Version,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mm, nil
}

func (s *meetingServiceImpl) UpdateMindMap(ctx context.Context, id string, mm *entity.MindMap) (*entity.MindMap, error) {
	err := s.coordinator.WithLock(id, func() error {
		meeting, err := s.meetingRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.mindMaps.Store(meeting, mm); err != nil {
			return err
		}
		if err := s.meetingRepo.Save(ctx, meeting); err != nil {
			return fmt.Errorf("%w: %v", errno.ErrPersistence, err)
		}
		s.hub.Publish(&entity.MeetingEvent{
			Type:           entity.EventMindMapGenerated,
			MeetingID:      id,
			MindMapVersion: mm.Version,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mm, nil
}

func (s *meetingServiceImpl) SubscribeEvents(ctx context.Context, id string) (<-chan *entity.MeetingEvent, func(), error) {
	if _, err := s.meetingRepo.Get(ctx, id); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.Subscribe(id)
	return ch, cancel, nil
}

// transition runs a status change under the meeting lock, saving and
// emitting status_change only when apply reports a state was crossed.
func (s *meetingServiceImpl) transition(ctx context.Context, id string, apply func(*entity.Meeting) (bool, error)) error {
	return s.coordinator.WithLock(id, func() error {
		meeting, err := s.meetingRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		changed, err := apply(meeting)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		meeting.UpdatedAt = time.Now()
		if err := s.meetingRepo.Save(ctx, meeting); err != nil {
			return fmt.Errorf("%w: %v", errno.ErrPersistence, err)
		}
		s.hub.Publish(&entity.MeetingEvent{
			Type:      entity.EventStatusChange,
			MeetingID: id,
			Status:    meeting.Status,
		})
		return nil
	})
}

// mutateActive runs an agenda-style mutation allowed only while active.
func (s *meetingServiceImpl) mutateActive(ctx context.Context, id string, apply func(*entity.Meeting) error) error {
	return s.coordinator.WithLock(id, func() error {
		meeting, err := s.meetingRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if meeting.Status != entity.StatusActive {
			return fmt.Errorf("%w: operation requires an active meeting, got %s", errno.ErrMeetingNotActive, meeting.Status)
		}
		if err := apply(meeting); err != nil {
			return err
		}
		meeting.UpdatedAt = time.Now()
		if err := s.meetingRepo.Save(ctx, meeting); err != nil {
			return fmt.Errorf("%w: %v", errno.ErrPersistence, err)
		}
		return nil
	})
}

func newAgendaItem(title, description string) (*entity.AgendaItem, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errno.Validationf("agenda title cannot be empty")
	}
	if len(title) > 200 {
		return nil, errno.Validationf("agenda title must be 200 characters or less")
	}
	return &entity.AgendaItem{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		CreatedAt:   time.Now(),
	}, nil
}

// mergeConfig fills enum defaults a partial config leaves empty.
func mergeConfig(cfg entity.MeetingConfig) entity.MeetingConfig {
	if cfg.SpeakingOrder == "" {
		cfg.SpeakingOrder = entity.OrderSequential
	}
	if cfg.DiscussionStyle == "" {
		cfg.DiscussionStyle = entity.StyleFormal
	}
	return cfg
}
