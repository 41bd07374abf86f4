package models

import "time"

// Role selects the wizard branch. A student completes 5 steps, a teacher 6
// (the extra qualifications/bio step).
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Valid reports whether the role is one of the supported branches.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// MaxSteps returns the number of wizard steps for the role.
func (r Role) MaxSteps() int {
	if r == RoleTeacher {
		return 6
	}
	return 5
}

// UniquenessResult is the tri-state outcome of an advisory backend probe.
type UniquenessResult string

const (
	UniquenessUnknown   UniquenessResult = "unknown"
	UniquenessTaken     UniquenessResult = "taken"
	UniquenessAvailable UniquenessResult = "available"
)

// CommitState is the registration committer's position in the two-phase
// protocol.
type CommitState string

const (
	CommitIdle             CommitState = "idle"
	CommitSubmitting1      CommitState = "submitting_identity"
	CommitAwaitingPasscode CommitState = "awaiting_passcode"
	CommitSubmitting2      CommitState = "submitting_profile"
	CommitComplete         CommitState = "complete"
	CommitFailed           CommitState = "failed"
)

// CommitStatus pairs the current state with recovery info. When State is
// CommitFailed, RetryFrom names the phase a retry re-enters so a phase-2
// failure never re-runs identity creation.
type CommitStatus struct {
	State     CommitState `json:"state"`
	RetryFrom CommitState `json:"retryFrom,omitempty"`
	Reason    string      `json:"reason,omitempty"`
}

// StagedFile is a user-selected file held client/server side pending the
// phase-2 upload commit. LocalPath points at the staging directory copy;
// the binary is not guaranteed to survive a process restart, only the
// metadata mirrored to the draft cache is.
type StagedFile struct {
	Field     string    `json:"field"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	LocalPath string    `json:"localPath,omitempty"`
	Progress  int       `json:"progress"`
	StagedAt  time.Time `json:"stagedAt"`
}

// RegistrationDraft holds all transient data during multi-step registration.
// It lives in the draft cache keyed by ID and is destroyed on successful
// final submission; staged-file metadata outlives a role switch.
type RegistrationDraft struct {
	ID              string                      `json:"id"`
	Role            Role                        `json:"role"`
	CurrentStep     int                         `json:"currentStep"`
	StepData        map[int]map[string]any      `json:"stepData,omitempty"`
	StagedFiles     map[string]StagedFile       `json:"stagedFiles,omitempty"`
	UniquenessFlags map[string]UniquenessResult `json:"uniquenessFlags,omitempty"`
	Commit          CommitStatus                `json:"commit"`
	Pending         *PendingRegistration        `json:"pending,omitempty"`
	CreatedAt       time.Time                   `json:"createdAt"`
	LastUpdatedAt   time.Time                   `json:"lastUpdatedAt"`
}

// PendingRegistration is the fully merged profile payload produced at final
// submit, minus credentials (the auth identity owns those after phase 1).
// It exists only between "phase 1 succeeded" and "phase 2 attempted".
type PendingRegistration struct {
	IdentityID string         `json:"identityId"`
	Email      string         `json:"email"`
	Role       Role           `json:"role"`
	Fields     map[string]any `json:"fields"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// RegistrationResult is returned once phase 2 completes: the persisted
// profile reference plus a signed token for the new identity.
type RegistrationResult struct {
	ProfileID  string `json:"profileId"`
	IdentityID string `json:"identityId"`
	Token      string `json:"token"`
	Status     string `json:"status"`
}
