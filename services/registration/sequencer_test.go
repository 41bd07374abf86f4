package registration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"darisni/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc        *DefaultRegistrationService
	drafts     *memDraftStore
	profiles   *fakeProfileRepo
	identities *fakeIdentityRepo
	storage    *fakeStorage
	email      *fakeEmail
	passcodes  *fakePasscodeStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		drafts:     newMemDraftStore(),
		profiles:   newFakeProfileRepo(),
		identities: newFakeIdentityRepo(),
		storage:    &fakeStorage{},
		email:      &fakeEmail{},
		passcodes:  newFakePasscodeStore(),
	}
	env.svc = &DefaultRegistrationService{
		Drafts:     env.drafts,
		Profiles:   env.profiles,
		Identities: env.identities,
		Storage:    env.storage,
		Email:      env.email,
		Passcodes:  env.passcodes,
		StagingDir: t.TempDir(),
	}
	return env
}

func TestCreateDraft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft, err := env.svc.CreateDraft(ctx, models.RoleStudent, "")
	require.NoError(t, err)
	assert.NotEmpty(t, draft.ID)
	assert.Equal(t, models.RoleStudent, draft.Role)
	assert.Equal(t, 1, draft.CurrentStep)
	assert.Equal(t, models.CommitIdle, draft.Commit.State)

	stored, err := env.svc.GetDraft(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, stored.ID)

	_, err = env.svc.CreateDraft(ctx, models.Role("moderator"), "")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestCreateDraftResumesSurvivingStagedFiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	present := filepath.Join(t.TempDir(), "front.jpg")
	require.NoError(t, os.WriteFile(present, []byte("jpeg bytes"), 0o644))

	oldID := "expired-draft"
	require.NoError(t, env.drafts.SaveStaged(ctx, oldID, map[string]models.StagedFile{
		"nationalIdFront": {Field: "nationalIdFront", Name: "front.jpg", LocalPath: present, Progress: 100},
		"nationalIdBack":  {Field: "nationalIdBack", Name: "back.jpg", LocalPath: "/nonexistent/back.jpg", Progress: 100},
	}))

	draft, err := env.svc.CreateDraft(ctx, models.RoleStudent, oldID)
	require.NoError(t, err)

	assert.Contains(t, draft.StagedFiles, "nationalIdFront", "metadata with a surviving binary is restored")
	assert.NotContains(t, draft.StagedFiles, "nationalIdBack", "metadata whose binary is gone is dropped")
}

func TestSelectRoleResetsProgressKeepsFiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft, err := env.svc.CreateDraft(ctx, models.RoleStudent, "")
	require.NoError(t, err)

	_, result, err := env.svc.Advance(ctx, draft.ID, 1, map[string]any{
		"email":           "amine@example.dz",
		"password":        "s3cret-pass",
		"confirmPassword": "s3cret-pass",
		"phone":           "0551234567",
	})
	require.NoError(t, err)
	require.True(t, result.Valid)

	staged, err := env.svc.StageFile(ctx, draft.ID, "nationalIdFront", fileUpload(t, "front.jpg", "jpeg bytes"))
	require.NoError(t, err)
	require.Equal(t, 100, staged.Progress)

	switched, err := env.svc.SelectRole(ctx, draft.ID, models.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, switched.Role)
	assert.Equal(t, 1, switched.CurrentStep)
	assert.Empty(t, switched.StepData, "accumulated answers are cleared on role switch")
	assert.Contains(t, switched.StagedFiles, "nationalIdFront", "staged documents survive role switch")

	same, err := env.svc.SelectRole(ctx, draft.ID, models.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, switched.Role, same.Role)
}

func TestAdvanceValidFailureLeavesDraftUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft, err := env.svc.CreateDraft(ctx, models.RoleStudent, "")
	require.NoError(t, err)

	returned, result, err := env.svc.Advance(ctx, draft.ID, 1, map[string]any{
		"email":    "not-an-email",
		"password": "abc",
	})
	require.NoError(t, err, "validation failure is a normal outcome, not an error")
	assert.False(t, result.Valid)
	assert.Equal(t, 1, returned.CurrentStep)

	stored, err := env.svc.GetDraft(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentStep)
	assert.Empty(t, stored.StepData, "nothing is merged from a failed submit")
}

func TestAdvanceStoresOnlyValidatedFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft, err := env.svc.CreateDraft(ctx, models.RoleStudent, "")
	require.NoError(t, err)

	advanced, result, err := env.svc.Advance(ctx, draft.ID, 1, map[string]any{
		"email":           "amine@example.dz",
		"password":        "s3cret-pass",
		"confirmPassword": "s3cret-pass",
		"phone":           "0551234567",
		"nationalId":      "BOGUS",
	})
	require.NoError(t, err)
	require.True(t, result.Valid)

	assert.Equal(t, "amine@example.dz", advanced.StepData[1]["email"])
	assert.NotContains(t, advanced.StepData[1], "nationalId",
		"undeclared keys are dropped before the merge")
}

func TestAdvanceStepMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft, err := env.svc.CreateDraft(ctx, models.RoleStudent, "")
	require.NoError(t, err)

	_, _, err = env.svc.Advance(ctx, draft.ID, 3, map[string]any{"nationalId": "123456789012345678"})
	assert.ErrorIs(t, err, ErrInvalidStep)
}

func TestRetreatAndAdvanceRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft, err := env.svc.CreateDraft(ctx, models.RoleStudent, "")
	require.NoError(t, err)

	creds := map[string]any{
		"email":           "amine@example.dz",
		"password":        "s3cret-pass",
		"confirmPassword": "s3cret-pass",
		"phone":           "0551234567",
	}
	advanced, result, err := env.svc.Advance(ctx, draft.ID, 1, creds)
	require.NoError(t, err)
	require.True(t, result.Valid)
	assert.Equal(t, 2, advanced.CurrentStep)

	back, err := env.svc.Retreat(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, back.CurrentStep)
	assert.Contains(t, back.StepData, 1, "retreating keeps already validated data")

	back, err = env.svc.Retreat(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, back.CurrentStep, "retreat below step one is a no-op")

	creds["phone"] = "0661234567"
	again, result, err := env.svc.Advance(ctx, draft.ID, 1, creds)
	require.NoError(t, err)
	require.True(t, result.Valid)
	assert.Equal(t, 2, again.CurrentStep)
	assert.Equal(t, "0661234567", again.StepData[1]["phone"], "re-advancing overwrites the step's data")
}

func TestAdvanceBlockedWhileCommitting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft, err := env.svc.CreateDraft(ctx, models.RoleStudent, "")
	require.NoError(t, err)

	stored, err := env.drafts.Get(ctx, draft.ID)
	require.NoError(t, err)
	stored.Commit = models.CommitStatus{State: models.CommitAwaitingPasscode}
	require.NoError(t, env.drafts.Save(ctx, stored))

	_, _, err = env.svc.Advance(ctx, draft.ID, 1, map[string]any{})
	var stateErr CommitStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, string(models.CommitAwaitingPasscode), stateErr.State)
}

func TestUnstageFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft, err := env.svc.CreateDraft(ctx, models.RoleStudent, "")
	require.NoError(t, err)

	staged, err := env.svc.StageFile(ctx, draft.ID, "studentCard", fileUpload(t, "card.png", "png bytes"))
	require.NoError(t, err)
	_, statErr := os.Stat(staged.LocalPath)
	require.NoError(t, statErr)
	assert.Equal(t, int64(len("png bytes")), staged.Size)

	require.NoError(t, env.svc.UnstageFile(ctx, draft.ID, "studentCard"))
	_, statErr = os.Stat(staged.LocalPath)
	assert.True(t, os.IsNotExist(statErr), "unstaging removes the binary")

	err = env.svc.UnstageFile(ctx, draft.ID, "studentCard")
	assert.ErrorIs(t, err, ErrFileNotStaged)
}

func TestDraftExpiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.GetDraft(ctx, "gone")
	assert.ErrorIs(t, err, ErrDraftNotFound)

	_, _, err = env.svc.Advance(ctx, "gone", 1, map[string]any{})
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func fileUpload(t *testing.T, name, content string) FileUpload {
	t.Helper()
	return FileUpload{
		Name:    name,
		Size:    int64(len(content)),
		Content: strings.NewReader(content),
	}
}
