package registration

import (
	"context"
	"io"
	"sync"
	"time"

	identityRepo "darisni/database/repository/identity"
	profileRepo "darisni/database/repository/profile"
	"darisni/models"
	"darisni/services/email"
	"darisni/services/storage"
)

// FileUpload carries an incoming file selection into the staging area.
type FileUpload struct {
	Name    string
	Size    int64
	Content io.Reader
}

// PasscodeStore issues and verifies one-time passcodes for a draft.
// Verify returns ErrPasscodeInvalid for a wrong or expired code; any other
// error is a transport failure and must not be reported as a wrong code.
type PasscodeStore interface {
	Issue(ctx context.Context, draftID string) (code string, ttl time.Duration, err error)
	Verify(ctx context.Context, draftID, code string) error
}

// RegistrationService drives the multi-step sign-up wizard: draft lifecycle,
// per-step validation, file staging, the advisory uniqueness probe, and the
// two-phase commit gated by a passcode.
type RegistrationService interface {
	// Draft lifecycle and step sequencing.
	CreateDraft(ctx context.Context, role models.Role, resumeFrom string) (*models.RegistrationDraft, error)
	GetDraft(ctx context.Context, id string) (*models.RegistrationDraft, error)
	SelectRole(ctx context.Context, id string, role models.Role) (*models.RegistrationDraft, error)
	Advance(ctx context.Context, id string, step int, data map[string]any) (*models.RegistrationDraft, ValidationResult, error)
	Retreat(ctx context.Context, id string) (*models.RegistrationDraft, error)

	// File staging.
	StageFile(ctx context.Context, id, field string, upload FileUpload) (*models.StagedFile, error)
	UnstageFile(ctx context.Context, id, field string) error

	// Advisory uniqueness probe, fired on field blur.
	Probe(ctx context.Context, id, fieldKind, value string)

	// Two-phase commit.
	Submit(ctx context.Context, id string) (*models.RegistrationDraft, error)
	ConfirmPasscode(ctx context.Context, id, code string) (*models.RegistrationResult, error)
	ResendPasscode(ctx context.Context, id string) error
}

// DefaultRegistrationService is the production implementation.
type DefaultRegistrationService struct {
	Drafts     DraftStore
	Profiles   profileRepo.ProfileRepository
	Identities identityRepo.IdentityRepository
	Storage    storage.StorageService
	Email      email.EmailService
	Passcodes  PasscodeStore

	// StagingDir is where staged binaries live until the phase-2 upload.
	StagingDir string
	// DocumentKey encrypts identity documents before they reach storage.
	DocumentKey string
	// ProbeDebounce is how long a probe waits for the field to settle.
	ProbeDebounce time.Duration

	probeMu      sync.Mutex
	probeCancels map[string]*probeHandle
}

var _ RegistrationService = (*DefaultRegistrationService)(nil)
