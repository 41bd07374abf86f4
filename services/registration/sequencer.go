package registration

import (
	"context"
	"time"

	"darisni/models"
	"darisni/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateDraft opens a fresh wizard draft for the role. When resumeFrom names
// an earlier draft, any staged-file metadata that survived it is carried
// over so the user is not asked to re-select files after a reload.
func (s *DefaultRegistrationService) CreateDraft(ctx context.Context, role models.Role, resumeFrom string) (*models.RegistrationDraft, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	now := time.Now()
	draft := &models.RegistrationDraft{
		ID:              uuid.New().String(),
		Role:            role,
		CurrentStep:     1,
		StepData:        make(map[int]map[string]any),
		StagedFiles:     make(map[string]models.StagedFile),
		UniquenessFlags: make(map[string]models.UniquenessResult),
		Commit:          models.CommitStatus{State: models.CommitIdle},
		CreatedAt:       now,
		LastUpdatedAt:   now,
	}

	if resumeFrom != "" {
		staged, err := s.Drafts.GetStaged(ctx, resumeFrom)
		if err != nil {
			// Resume is best effort; a cache miss just means re-selecting files.
			utils.GetLogger().Warn("failed to restore staged files", zap.String("resumeFrom", resumeFrom), zap.Error(err))
		}
		for field, sf := range staged {
			if !stagedBinaryPresent(sf) {
				// The binary did not survive; keep nothing rather than stale
				// metadata, so step validation re-prompts the user.
				continue
			}
			draft.StagedFiles[field] = sf
		}
	}

	if err := s.Drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// GetDraft returns the draft state for wizard re-hydration, folding in the
// uniqueness flags kept under their own key.
func (s *DefaultRegistrationService) GetDraft(ctx context.Context, id string) (*models.RegistrationDraft, error) {
	draft, err := s.Drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	flags, err := s.Drafts.GetFlags(ctx, id)
	if err != nil {
		// Advisory only; a missing flag set just reads as unknown.
		utils.GetLogger().Warn("failed to load uniqueness flags", zap.String("draftID", id), zap.Error(err))
		return draft, nil
	}
	if len(flags) > 0 {
		draft.UniquenessFlags = flags
	}
	return draft, nil
}

// SelectRole switches the wizard branch. Accumulated step data, uniqueness
// flags and commit progress are cleared and the wizard returns to step 1;
// staged files are kept, since uploaded ID documents are not role-specific.
func (s *DefaultRegistrationService) SelectRole(ctx context.Context, id string, role models.Role) (*models.RegistrationDraft, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	draft, err := s.Drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Role == role {
		return draft, nil
	}

	draft.Role = role
	draft.CurrentStep = 1
	draft.StepData = make(map[int]map[string]any)
	draft.UniquenessFlags = make(map[string]models.UniquenessResult)
	draft.Commit = models.CommitStatus{State: models.CommitIdle}
	draft.Pending = nil
	draft.LastUpdatedAt = time.Now()

	if err := s.Drafts.DeleteFlags(ctx, id); err != nil {
		utils.GetLogger().Warn("failed to clear uniqueness flags", zap.String("draftID", id), zap.Error(err))
	}

	if err := s.Drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Advance validates the submitted data against the current step's schema.
// On success the canonical validated field set is merged into the draft and
// the wizard moves one step forward (a no-op past the role's last step).
// Unknown input keys never survive validation. On validation failure the
// draft is left untouched and the field errors are returned as a normal,
// expected outcome.
func (s *DefaultRegistrationService) Advance(ctx context.Context, id string, step int, data map[string]any) (*models.RegistrationDraft, ValidationResult, error) {
	draft, err := s.Drafts.Get(ctx, id)
	if err != nil {
		return nil, ValidationResult{}, err
	}
	if draft.Commit.State != models.CommitIdle && draft.Commit.State != models.CommitFailed {
		return nil, ValidationResult{}, CommitStateError{State: string(draft.Commit.State), Op: "edit steps"}
	}
	if step != draft.CurrentStep {
		return nil, ValidationResult{}, ErrInvalidStep
	}

	schema, ok := SchemaFor(step, draft.Role)
	if !ok {
		return nil, ValidationResult{}, ErrInvalidStep
	}

	result := schema.Validate(data, draft.StagedFiles)
	if !result.Valid {
		return draft, result, nil
	}

	if draft.StepData == nil {
		draft.StepData = make(map[int]map[string]any)
	}
	draft.StepData[step] = result.Fields
	if draft.CurrentStep < draft.Role.MaxSteps() {
		draft.CurrentStep++
	}
	draft.LastUpdatedAt = time.Now()

	if err := s.Drafts.Save(ctx, draft); err != nil {
		return nil, ValidationResult{}, err
	}
	return draft, result, nil
}

// Retreat moves one step back (a no-op below step 1). Data already merged
// for later steps is kept; revisiting a step re-validates and overwrites on
// the next advance.
func (s *DefaultRegistrationService) Retreat(ctx context.Context, id string) (*models.RegistrationDraft, error) {
	draft, err := s.Drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.CurrentStep > 1 {
		draft.CurrentStep--
		draft.LastUpdatedAt = time.Now()
		if err := s.Drafts.Save(ctx, draft); err != nil {
			return nil, err
		}
	}
	return draft, nil
}
