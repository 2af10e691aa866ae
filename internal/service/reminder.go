package service

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"meditrack/internal/model"
	"meditrack/internal/notify"
)

// ReminderScheduler keeps at most one pending reminder per dose instance.
// Finite doses get a one-shot trigger at their exact time; continuous doses
// repeat daily at their clock time. A rejected arm call is logged and
// swallowed: the dose stays persisted and visible, only the alert is lost.
type ReminderScheduler struct {
	channel notify.Channel
	logger  *zap.Logger

	mu      sync.Mutex
	byGroup map[uuid.UUID]map[uuid.UUID]struct{}
	groupOf map[uuid.UUID]uuid.UUID
}

func NewReminderScheduler(channel notify.Channel, logger *zap.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		channel: channel,
		logger:  logger,
		byGroup: make(map[uuid.UUID]map[uuid.UUID]struct{}),
		groupOf: make(map[uuid.UUID]uuid.UUID),
	}
}

// Arm schedules the reminder for one dose, replacing any pending reminder
// with the same id.
func (s *ReminderScheduler) Arm(dose *model.DoseInstance) {
	req := notify.Request{
		ID:      dose.ID.String(),
		Title:   "Medication time",
		Body:    fmt.Sprintf("Take %s of %s", dose.DoseAmount, dose.Name),
		Trigger: triggerFor(dose),
	}

	if err := s.channel.Arm(req); err != nil {
		s.logger.Warn("reminder not armed",
			zap.String("id", dose.ID.String()),
			zap.String("name", dose.Name),
			zap.Error(err),
		)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if group, ok := s.byGroup[dose.GroupID]; ok {
		group[dose.ID] = struct{}{}
	} else {
		s.byGroup[dose.GroupID] = map[uuid.UUID]struct{}{dose.ID: {}}
	}
	s.groupOf[dose.ID] = dose.GroupID
}

// Cancel removes the pending reminder for an id. Unknown ids are a no-op.
func (s *ReminderScheduler) Cancel(id uuid.UUID) {
	s.channel.Cancel(id.String())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.forget(id)
}

// RearmGroup cancels every reminder previously armed for the group, then
// arms the current instance set. Used after an edit retimes a treatment.
func (s *ReminderScheduler) RearmGroup(groupID uuid.UUID, doses []model.DoseInstance) {
	s.CancelGroup(groupID)
	for i := range doses {
		s.Arm(&doses[i])
	}
}

// CancelGroup removes every pending reminder for the group.
func (s *ReminderScheduler) CancelGroup(groupID uuid.UUID) {
	s.mu.Lock()
	ids := make([]uuid.UUID, 0, len(s.byGroup[groupID]))
	for id := range s.byGroup[groupID] {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.Cancel(id)
	}
}

// Armed reports whether the id currently has a pending reminder.
func (s *ReminderScheduler) Armed(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.groupOf[id]
	return ok
}

func (s *ReminderScheduler) forget(id uuid.UUID) {
	groupID, ok := s.groupOf[id]
	if !ok {
		return
	}
	delete(s.groupOf, id)
	if group, ok := s.byGroup[groupID]; ok {
		delete(group, id)
		if len(group) == 0 {
			delete(s.byGroup, groupID)
		}
	}
}

func triggerFor(dose *model.DoseInstance) notify.TriggerSpec {
	if dose.Continuous() {
		return notify.Daily(dose.ScheduledAt.Hour(), dose.ScheduledAt.Minute())
	}
	return notify.Once(dose.ScheduledAt)
}
