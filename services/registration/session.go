package registration

import (
	"context"
	"encoding/json"
	"time"

	"darisni/models"
	"darisni/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DraftStore persists registration drafts and the staged-file metadata that
// outlives them. The Redis implementation is used in production; tests use
// an in-memory fake.
type DraftStore interface {
	Save(ctx context.Context, draft *models.RegistrationDraft) error
	Get(ctx context.Context, id string) (*models.RegistrationDraft, error)
	Delete(ctx context.Context, id string) error

	// SaveStaged mirrors staged-file metadata under its own key so a
	// returning user can resume after the draft itself is gone.
	SaveStaged(ctx context.Context, draftID string, files map[string]models.StagedFile) error
	GetStaged(ctx context.Context, draftID string) (map[string]models.StagedFile, error)
	DeleteStaged(ctx context.Context, draftID string) error

	// Uniqueness flags live under their own key. Probe verdicts land
	// asynchronously; writing them into the draft document would race
	// user-driven draft saves and drop whichever write loses.
	SaveFlag(ctx context.Context, draftID, field string, verdict models.UniquenessResult) error
	GetFlags(ctx context.Context, draftID string) (map[string]models.UniquenessResult, error)
	DeleteFlags(ctx context.Context, draftID string) error
}

// RedisDraftStore implements DraftStore on the draft cache client.
type RedisDraftStore struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisDraftStore creates a store with the given TTL for drafts. Staged
// metadata is kept around twice as long as the draft.
func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	if ttl <= 0 {
		ttl = utils.DefaultDraftTTL
	}
	return &RedisDraftStore{Client: client, TTL: ttl}
}

func (s *RedisDraftStore) Save(ctx context.Context, draft *models.RegistrationDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		utils.GetLogger().Error("Failed to marshal registration draft", zap.Error(err))
		return err
	}
	if err := s.Client.Set(ctx, utils.DraftCachePrefix+draft.ID, data, s.TTL).Err(); err != nil {
		utils.GetLogger().Error("Failed to save registration draft", zap.String("draftID", draft.ID), zap.Error(err))
		return err
	}
	return nil
}

func (s *RedisDraftStore) Get(ctx context.Context, id string) (*models.RegistrationDraft, error) {
	data, err := s.Client.Get(ctx, utils.DraftCachePrefix+id).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrDraftNotFound
		}
		utils.GetLogger().Error("Failed to get registration draft", zap.String("draftID", id), zap.Error(err))
		return nil, err
	}
	var draft models.RegistrationDraft
	if err := json.Unmarshal([]byte(data), &draft); err != nil {
		utils.GetLogger().Error("Failed to unmarshal registration draft", zap.String("draftID", id), zap.Error(err))
		return nil, err
	}
	return &draft, nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, id string) error {
	return s.Client.Del(ctx, utils.DraftCachePrefix+id).Err()
}

func (s *RedisDraftStore) SaveStaged(ctx context.Context, draftID string, files map[string]models.StagedFile) error {
	data, err := json.Marshal(files)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, utils.StagedFilePrefix+draftID, data, 2*s.TTL).Err()
}

func (s *RedisDraftStore) GetStaged(ctx context.Context, draftID string) (map[string]models.StagedFile, error) {
	data, err := s.Client.Get(ctx, utils.StagedFilePrefix+draftID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	files := make(map[string]models.StagedFile)
	if err := json.Unmarshal([]byte(data), &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (s *RedisDraftStore) DeleteStaged(ctx context.Context, draftID string) error {
	return s.Client.Del(ctx, utils.StagedFilePrefix+draftID).Err()
}

func (s *RedisDraftStore) SaveFlag(ctx context.Context, draftID, field string, verdict models.UniquenessResult) error {
	key := utils.FlagCachePrefix + draftID
	if err := s.Client.HSet(ctx, key, field, string(verdict)).Err(); err != nil {
		return err
	}
	return s.Client.Expire(ctx, key, s.TTL).Err()
}

func (s *RedisDraftStore) GetFlags(ctx context.Context, draftID string) (map[string]models.UniquenessResult, error) {
	raw, err := s.Client.HGetAll(ctx, utils.FlagCachePrefix+draftID).Result()
	if err != nil {
		return nil, err
	}
	flags := make(map[string]models.UniquenessResult, len(raw))
	for field, verdict := range raw {
		flags[field] = models.UniquenessResult(verdict)
	}
	return flags, nil
}

func (s *RedisDraftStore) DeleteFlags(ctx context.Context, draftID string) error {
	return s.Client.Del(ctx, utils.FlagCachePrefix+draftID).Err()
}
