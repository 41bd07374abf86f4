package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"darisni/models"
	"darisni/services/email"

	"go.mongodb.org/mongo-driver/bson"
)

// memDraftStore is an in-memory DraftStore. Values round-trip through JSON
// on save and load so tests observe the same copy semantics as the cache.
type memDraftStore struct {
	mu      sync.Mutex
	drafts  map[string][]byte
	staged  map[string][]byte
	flags   map[string]map[string]models.UniquenessResult
	saveErr error
}

func newMemDraftStore() *memDraftStore {
	return &memDraftStore{
		drafts: make(map[string][]byte),
		staged: make(map[string][]byte),
		flags:  make(map[string]map[string]models.UniquenessResult),
	}
}

func (m *memDraftStore) Save(_ context.Context, draft *models.RegistrationDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	m.drafts[draft.ID] = data
	return nil
}

func (m *memDraftStore) Get(_ context.Context, id string) (*models.RegistrationDraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	var draft models.RegistrationDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (m *memDraftStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, id)
	return nil
}

func (m *memDraftStore) SaveStaged(_ context.Context, draftID string, files map[string]models.StagedFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := json.Marshal(files)
	if err != nil {
		return err
	}
	m.staged[draftID] = data
	return nil
}

func (m *memDraftStore) GetStaged(_ context.Context, draftID string) (map[string]models.StagedFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.staged[draftID]
	if !ok {
		return nil, nil
	}
	files := make(map[string]models.StagedFile)
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (m *memDraftStore) DeleteStaged(_ context.Context, draftID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.staged, draftID)
	return nil
}

func (m *memDraftStore) SaveFlag(_ context.Context, draftID, field string, verdict models.UniquenessResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.flags[draftID] == nil {
		m.flags[draftID] = make(map[string]models.UniquenessResult)
	}
	m.flags[draftID][field] = verdict
	return nil
}

func (m *memDraftStore) GetFlags(_ context.Context, draftID string) (map[string]models.UniquenessResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]models.UniquenessResult, len(m.flags[draftID]))
	for field, verdict := range m.flags[draftID] {
		out[field] = verdict
	}
	return out, nil
}

func (m *memDraftStore) DeleteFlags(_ context.Context, draftID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.flags, draftID)
	return nil
}

// fakeProfileRepo is an in-memory ProfileRepository with error injection for
// the national ID lookup.
type fakeProfileRepo struct {
	mu            sync.Mutex
	profiles      map[string]*models.Profile
	takenIDs      map[string]bool
	existsErr     error
	createErr     error
	existsQueries []string
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		profiles: make(map[string]*models.Profile),
		takenIDs: make(map[string]bool),
	}
}

func (f *fakeProfileRepo) Create(profile *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *profile
	f.profiles[profile.ID] = &cp
	return nil
}

func (f *fakeProfileRepo) Update(profile *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *profile
	f.profiles[profile.ID] = &cp
	return nil
}

func (f *fakeProfileRepo) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.profiles, id)
	return nil
}

func (f *fakeProfileRepo) GetByID(id string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, fmt.Errorf("profile %s not found", id)
}

func (f *fakeProfileRepo) GetByIdentityID(identityID string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.IdentityID == identityID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeProfileRepo) GetByIDWithProjection(id string, _ bson.M) (*models.Profile, error) {
	return f.GetByID(id)
}

func (f *fakeProfileRepo) ExistsByNationalID(nationalID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsQueries = append(f.existsQueries, nationalID)
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.takenIDs[nationalID], nil
}

// fakeIdentityRepo is an in-memory IdentityRepository.
type fakeIdentityRepo struct {
	mu         sync.Mutex
	identities map[string]*models.Identity
	createErr  error
	updateErr  error
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{identities: make(map[string]*models.Identity)}
}

func (f *fakeIdentityRepo) Create(identity *models.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *identity
	f.identities[identity.ID] = &cp
	return nil
}

func (f *fakeIdentityRepo) Update(identity *models.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	cp := *identity
	f.identities[identity.ID] = &cp
	return nil
}

func (f *fakeIdentityRepo) GetByID(id string) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i, ok := f.identities[id]; ok {
		cp := *i
		return &cp, nil
	}
	return nil, fmt.Errorf("identity %s not found", id)
}

func (f *fakeIdentityRepo) GetByEmail(email string) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, i := range f.identities {
		if i.Email == email {
			cp := *i
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeIdentityRepo) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.identities, id)
	return nil
}

// fakePasscodeStore always issues the same code. verifyErr injects a
// transport failure distinct from a wrong code.
type fakePasscodeStore struct {
	mu        sync.Mutex
	code      string
	issued    int
	issueErr  error
	verifyErr error
}

func newFakePasscodeStore() *fakePasscodeStore {
	return &fakePasscodeStore{code: "123456"}
}

func (f *fakePasscodeStore) Issue(_ context.Context, _ string) (string, time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.issueErr != nil {
		return "", 0, f.issueErr
	}
	f.issued++
	return f.code, 5 * time.Minute, nil
}

func (f *fakePasscodeStore) Verify(_ context.Context, _ string, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.verifyErr != nil {
		return f.verifyErr
	}
	if code != f.code {
		return ErrPasscodeInvalid
	}
	return nil
}

// fakeStorage records uploads and fails any whose local path contains one of
// the configured markers.
type fakeStorage struct {
	mu       sync.Mutex
	failOn   []string
	uploaded []string
	deleted  []string
}

func (f *fakeStorage) UploadDocumentFile(_ context.Context, localFilePath, destFolder, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, marker := range f.failOn {
		if strings.Contains(localFilePath, marker) {
			return "", errors.New("upload rejected")
		}
	}
	f.uploaded = append(f.uploaded, localFilePath)
	return destFolder + "/" + localFilePath, nil
}

func (f *fakeStorage) DeleteFile(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, publicID)
	return nil
}

func (f *fakeStorage) GetSecureDownloadURL(_ context.Context, _, publicID string, _ time.Duration) (string, error) {
	return "https://storage.test/signed/" + publicID, nil
}

// fakeEmail records outbound messages and can fail delivery on demand.
type fakeEmail struct {
	mu      sync.Mutex
	sent    []email.Message
	sendErr error
}

func (f *fakeEmail) Send(_ context.Context, msg email.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeEmail) SentMessages() []email.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]email.Message, len(f.sent))
	copy(out, f.sent)
	return out
}
