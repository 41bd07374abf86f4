package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"darisni/models"
	"darisni/services/email"
	"darisni/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// The committer walks an explicit state machine:
//
//	Idle -> Submitting1 -> AwaitingPasscode -> Submitting2 -> Complete
//
// with Failed reachable from either submitting state. Failed records which
// phase it came from, so a retry after a phase-2 failure re-attempts only
// the profile write and never re-runs identity creation.

// Submit runs phase 1: it turns the fully collected draft into an auth
// identity plus a PendingRegistration, and sends the passcode email.
func (s *DefaultRegistrationService) Submit(ctx context.Context, id string) (*models.RegistrationDraft, error) {
	draft, err := s.Drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch draft.Commit.State {
	case models.CommitIdle:
	case models.CommitFailed:
		if draft.Commit.RetryFrom != models.CommitSubmitting1 {
			return nil, CommitStateError{State: string(draft.Commit.State), Op: "submit"}
		}
	default:
		return nil, CommitStateError{State: string(draft.Commit.State), Op: "submit"}
	}

	if err := requireComplete(draft); err != nil {
		return nil, err
	}

	creds := draft.StepData[1]
	emailAddr := stringField(creds, "email")
	password := stringField(creds, "password")
	phone := stringField(creds, "phone")

	draft.Commit = models.CommitStatus{State: models.CommitSubmitting1}
	if err := s.Drafts.Save(ctx, draft); err != nil {
		return nil, err
	}

	fail := func(reason string) {
		draft.Commit = models.CommitStatus{
			State:     models.CommitFailed,
			RetryFrom: models.CommitSubmitting1,
			Reason:    reason,
		}
		if saveErr := s.Drafts.Save(ctx, draft); saveErr != nil {
			utils.GetLogger().Error("failed to record commit failure", zap.String("draftID", id), zap.Error(saveErr))
		}
	}

	existing, err := s.Identities.GetByEmail(emailAddr)
	if err != nil {
		fail("identity lookup failed")
		return nil, fmt.Errorf("failed to check for existing identity: %w", err)
	}
	if existing != nil {
		fail("already registered")
		return nil, AlreadyRegisteredError{Email: emailAddr}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fail("credential processing failed")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// The identity is created before any passcode leaves the system: a
	// unique-index race here must not strand the user with a live code for
	// a registration that never reached the passcode gate.
	identity := &models.Identity{
		ID:           uuid.New().String(),
		Email:        emailAddr,
		Phone:        phone,
		PasswordHash: string(hashed),
		Verified:     false,
	}
	if err := s.Identities.Create(identity); err != nil {
		fail("identity creation failed")
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	// If the passcode cannot be issued or delivered, the unverified identity
	// is rolled back so a retry does not hit the already-registered path.
	undoIdentity := func() {
		if err := s.Identities.Delete(identity.ID); err != nil {
			utils.GetLogger().Error("failed to roll back identity",
				zap.String("identityID", identity.ID), zap.Error(err))
		}
	}

	code, ttl, err := s.Passcodes.Issue(ctx, draft.ID)
	if err != nil {
		undoIdentity()
		fail("passcode issue failed")
		return nil, fmt.Errorf("failed to issue passcode: %w", err)
	}
	if err := s.sendPasscodeEmail(ctx, emailAddr, code, ttl); err != nil {
		undoIdentity()
		fail("passcode delivery failed")
		return nil, fmt.Errorf("failed to send passcode: %w", err)
	}

	// The merged profile payload minus credentials: the identity owns those now.
	fields := make(map[string]any)
	for step := 2; step <= draft.Role.MaxSteps(); step++ {
		for k, v := range draft.StepData[step] {
			fields[k] = v
		}
	}
	fields["phone"] = phone

	draft.Pending = &models.PendingRegistration{
		IdentityID: identity.ID,
		Email:      emailAddr,
		Role:       draft.Role,
		Fields:     fields,
		CreatedAt:  time.Now(),
	}
	draft.Commit = models.CommitStatus{State: models.CommitAwaitingPasscode}
	draft.LastUpdatedAt = time.Now()

	if err := s.Drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// ResendPasscode issues a fresh passcode for a draft already awaiting one.
// Its failures are reported independently and never move the wizard state.
func (s *DefaultRegistrationService) ResendPasscode(ctx context.Context, id string) error {
	draft, err := s.Drafts.Get(ctx, id)
	if err != nil {
		return err
	}
	if draft.Commit.State != models.CommitAwaitingPasscode {
		return ErrNotAwaitingPasscode
	}

	code, ttl, err := s.Passcodes.Issue(ctx, draft.ID)
	if err != nil {
		return fmt.Errorf("failed to issue passcode: %w", err)
	}
	return s.sendPasscodeEmail(ctx, draft.Pending.Email, code, ttl)
}

// ConfirmPasscode is the verification gate's entry into phase 2. A draft in
// AwaitingPasscode must present a matching code; a draft that failed during
// phase 2 retries the profile write directly, since its passcode was already
// consumed.
func (s *DefaultRegistrationService) ConfirmPasscode(ctx context.Context, id, code string) (*models.RegistrationResult, error) {
	draft, err := s.Drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch draft.Commit.State {
	case models.CommitAwaitingPasscode:
		if err := s.Passcodes.Verify(ctx, draft.ID, code); err != nil {
			if errors.Is(err, ErrPasscodeInvalid) {
				return nil, ErrPasscodeInvalid
			}
			// A passcode-store outage is not a wrong code; the draft stays
			// in AwaitingPasscode and the attempt can be retried.
			return nil, fmt.Errorf("failed to verify passcode: %w", err)
		}
	case models.CommitFailed:
		if draft.Commit.RetryFrom != models.CommitSubmitting2 {
			return nil, CommitStateError{State: string(draft.Commit.State), Op: "confirm passcode"}
		}
	default:
		return nil, CommitStateError{State: string(draft.Commit.State), Op: "confirm passcode"}
	}

	if draft.Pending == nil {
		return nil, CommitStateError{State: string(draft.Commit.State), Op: "confirm passcode"}
	}

	draft.Commit = models.CommitStatus{State: models.CommitSubmitting2}
	if err := s.Drafts.Save(ctx, draft); err != nil {
		return nil, err
	}

	result, err := s.commitProfile(ctx, draft)
	if err != nil {
		draft.Commit = models.CommitStatus{
			State:     models.CommitFailed,
			RetryFrom: models.CommitSubmitting2,
			Reason:    "profile commit failed",
		}
		if saveErr := s.Drafts.Save(ctx, draft); saveErr != nil {
			utils.GetLogger().Error("failed to record commit failure", zap.String("draftID", id), zap.Error(saveErr))
		}
		return nil, err
	}

	draft.Commit = models.CommitStatus{State: models.CommitComplete}
	s.cleanupStaging(ctx, draft)
	if err := s.Drafts.Delete(ctx, draft.ID); err != nil {
		utils.GetLogger().Warn("failed to delete completed draft", zap.String("draftID", draft.ID), zap.Error(err))
	}
	return result, nil
}

// commitProfile is the body of phase 2: concurrent uploads, then one
// profile write keyed by the now-verified identity.
func (s *DefaultRegistrationService) commitProfile(ctx context.Context, draft *models.RegistrationDraft) (*models.RegistrationResult, error) {
	pending := draft.Pending
	paths := s.uploadStagedFiles(ctx, draft)

	// A phase-2 retry after a partial failure must not duplicate the profile.
	existing, err := s.Profiles.GetByIdentityID(pending.IdentityID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing profile: %w", err)
	}

	var profileID string
	if existing != nil {
		profileID = existing.ID
		// This retry re-uploaded the staged documents, but the profile
		// already holds its paths; drop the fresh duplicates.
		for field, path := range paths {
			if err := s.Storage.DeleteFile(ctx, path); err != nil {
				utils.GetLogger().Warn("failed to delete duplicate upload",
					zap.String("field", field), zap.String("path", path), zap.Error(err))
			}
		}
	} else {
		profile, err := buildProfile(pending, paths)
		if err != nil {
			return nil, err
		}
		if err := s.Profiles.Create(profile); err != nil {
			return nil, fmt.Errorf("failed to write profile: %w", err)
		}
		profileID = profile.ID
	}

	identity, err := s.Identities.GetByID(pending.IdentityID)
	if err != nil || identity == nil {
		return nil, fmt.Errorf("failed to resolve identity %s: %w", pending.IdentityID, err)
	}

	token, err := utils.GenerateToken(identity.ID, identity.Email, 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to generate auth token: %w", err)
	}

	identity.Verified = true
	identity.TokenHash = utils.HashToken(token)
	if err := s.Identities.Update(identity); err != nil {
		return nil, fmt.Errorf("failed to mark identity verified: %w", err)
	}

	return &models.RegistrationResult{
		ProfileID:  profileID,
		IdentityID: identity.ID,
		Token:      token,
		Status:     models.ProfileStatusPending,
	}, nil
}

// uploadStagedFiles pushes every staged binary to durable storage. Uploads
// run concurrently and independently: a single failure (or a binary lost to
// a restart) only omits that field's path from the profile payload.
func (s *DefaultRegistrationService) uploadStagedFiles(ctx context.Context, draft *models.RegistrationDraft) map[string]string {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		paths = make(map[string]string)
	)

	for field, staged := range draft.StagedFiles {
		if !stagedBinaryPresent(staged) {
			utils.GetLogger().Warn("staged binary missing, omitting upload",
				zap.String("draftID", draft.ID), zap.String("field", field))
			continue
		}
		wg.Add(1)
		go func(field string, staged models.StagedFile) {
			defer wg.Done()
			destFolder := "registration/" + string(draft.Role)
			path, err := s.Storage.UploadDocumentFile(ctx, staged.LocalPath, destFolder, s.DocumentKey)
			if err != nil {
				utils.GetLogger().Warn("staged file upload failed",
					zap.String("draftID", draft.ID), zap.String("field", field), zap.Error(err))
				return
			}
			mu.Lock()
			paths[field] = path
			mu.Unlock()
		}(field, staged)
	}

	wg.Wait()
	return paths
}

func (s *DefaultRegistrationService) sendPasscodeEmail(ctx context.Context, to, code string, ttl time.Duration) error {
	msg := email.Message{
		To:      to,
		Subject: "Your Darisni verification code",
		TextContent: fmt.Sprintf(
			"Your Darisni verification code is %s. It expires in %d minutes.",
			code, int(ttl.Minutes()),
		),
	}
	return s.Email.Send(ctx, msg)
}

// buildProfile maps the pending registration's merged fields onto the
// profile record. Field keys match the profile's JSON tags.
func buildProfile(pending *models.PendingRegistration, documents map[string]string) (*models.Profile, error) {
	raw, err := json.Marshal(pending.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pending fields: %w", err)
	}
	var profile models.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode pending fields: %w", err)
	}

	profile.ID = uuid.New().String()
	profile.IdentityID = pending.IdentityID
	profile.Role = pending.Role
	profile.Email = pending.Email
	profile.Documents = documents
	profile.Status = models.ProfileStatusPending
	return &profile, nil
}

// requireComplete checks that every step of the role's wizard has validated
// data merged before phase 1 may start.
func requireComplete(draft *models.RegistrationDraft) error {
	for step := 1; step <= draft.Role.MaxSteps(); step++ {
		if _, ok := draft.StepData[step]; !ok {
			return fmt.Errorf("%w: step %d has no validated data", ErrInvalidStep, step)
		}
	}
	return nil
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
