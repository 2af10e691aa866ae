package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"meditrack/internal/model"
	"meditrack/internal/repository"
)

// TreatmentService wires expansion, persistence and reminder scheduling.
// A treatment is created, edited and deleted as a whole family of doses.
type TreatmentService struct {
	doses     *repository.DoseRepository
	reminders *ReminderScheduler
	knowledge *KnowledgeBase
	logger    *zap.Logger
}

func NewTreatmentService(doses *repository.DoseRepository, reminders *ReminderScheduler, knowledge *KnowledgeBase, logger *zap.Logger) *TreatmentService {
	return &TreatmentService{doses: doses, reminders: reminders, knowledge: knowledge, logger: logger}
}

// Suggest searches the reference dataset and returns ready-to-edit inputs,
// each carrying the drug's safety minimum for the interval check.
func (s *TreatmentService) Suggest(query string) []TreatmentInput {
	entries := s.knowledge.Search(query)
	inputs := make([]TreatmentInput, 0, len(entries))
	for _, entry := range entries {
		inputs = append(inputs, s.knowledge.Prefill(entry))
	}
	return inputs
}

// Create validates and expands the input, persists every dose and arms its
// reminder. An unsafe interval blocks creation unless overrideUnsafe is set.
// Reminder failures do not fail creation.
func (s *TreatmentService) Create(ctx context.Context, input TreatmentInput, overrideUnsafe bool) ([]model.DoseInstance, error) {
	expanded, err := Expand(input, overrideUnsafe)
	if err != nil {
		return nil, err
	}

	for i := range expanded {
		if err := s.doses.Insert(ctx, &expanded[i]); err != nil {
			return nil, err
		}
		s.reminders.Arm(&expanded[i])
	}

	s.logger.Info("treatment created",
		zap.String("name", input.Name),
		zap.String("group_id", expanded[0].GroupID.String()),
		zap.Int("doses", len(expanded)),
	)
	return expanded, nil
}

// ToggleDone flips completion on a single dose. Siblings are untouched.
func (s *TreatmentService) ToggleDone(ctx context.Context, id uuid.UUID) (*model.DoseInstance, error) {
	dose, err := s.doses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dose.IsDone = !dose.IsDone
	if err := s.doses.Save(ctx, dose); err != nil {
		return nil, err
	}
	return dose, nil
}

// UpdateGroup regenerates the whole family from the edited input, keeping the
// group id. Completed doses are regenerated too: the edit re-derives the full
// treatment definition. Old reminders are cancelled before the new set is
// armed so no alert references a replaced dose.
func (s *TreatmentService) UpdateGroup(ctx context.Context, groupID uuid.UUID, input TreatmentInput, overrideUnsafe bool) ([]model.DoseInstance, error) {
	expanded, err := ExpandGroup(input, groupID, overrideUnsafe)
	if err != nil {
		return nil, err
	}

	if err := s.doses.DeleteByGroupID(ctx, groupID); err != nil {
		return nil, err
	}

	for i := range expanded {
		if err := s.doses.Insert(ctx, &expanded[i]); err != nil {
			return nil, err
		}
	}

	s.reminders.RearmGroup(groupID, expanded)

	s.logger.Info("treatment updated",
		zap.String("group_id", groupID.String()),
		zap.Int("doses", len(expanded)),
	)
	return expanded, nil
}

// DeleteGroup removes the dose's whole family and cancels its reminders.
// When the family cannot be fetched, it falls back to deleting just the dose
// in hand rather than surfacing an error for the whole operation.
func (s *TreatmentService) DeleteGroup(ctx context.Context, dose *model.DoseInstance) error {
	family, err := s.doses.FetchByGroupID(ctx, dose.GroupID)
	if err != nil {
		s.logger.Warn("fetch family failed, deleting single dose",
			zap.String("group_id", dose.GroupID.String()),
			zap.Error(err),
		)
		s.reminders.Cancel(dose.ID)
		return s.doses.Delete(ctx, dose.ID)
	}

	if err := s.doses.DeleteByGroupID(ctx, dose.GroupID); err != nil {
		return err
	}
	for i := range family {
		s.reminders.Cancel(family[i].ID)
	}
	return nil
}

// RearmPending re-arms reminders for every continuous dose and every finite
// dose still ahead of now. Pending triggers are process-local, so a restart
// has to rebuild them from the store.
func (s *TreatmentService) RearmPending(ctx context.Context, now time.Time) error {
	all, err := s.doses.ListAll(ctx)
	if err != nil {
		return err
	}

	armed := 0
	for i := range all {
		dose := &all[i]
		if dose.Continuous() || (!dose.IsDone && dose.ScheduledAt.After(now)) {
			s.reminders.Arm(dose)
			armed++
		}
	}
	s.logger.Info("reminders rearmed", zap.Int("count", armed))
	return nil
}
