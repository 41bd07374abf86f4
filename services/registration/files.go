package registration

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"darisni/models"
	"darisni/utils"

	"go.uber.org/zap"
)

// stagedBinaryPresent reports whether the staged binary is still on disk.
// Staged metadata survives a restart in the draft cache; the binary may not.
func stagedBinaryPresent(sf models.StagedFile) bool {
	if sf.LocalPath == "" {
		return false
	}
	info, err := os.Stat(sf.LocalPath)
	return err == nil && !info.IsDir()
}

func (s *DefaultRegistrationService) stagingRoot() string {
	if s.StagingDir != "" {
		return s.StagingDir
	}
	return filepath.Join(os.TempDir(), "darisni-staging")
}

// StageFile records a selected file under its logical field name: the binary
// goes to the staging directory, the metadata into the draft and its
// longer-lived staged mirror. Progress is monotonically advanced and ends at
// 100 once the copy completes.
func (s *DefaultRegistrationService) StageFile(ctx context.Context, id, field string, upload FileUpload) (*models.StagedFile, error) {
	draft, err := s.Drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(s.stagingRoot(), draft.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging dir: %w", err)
	}

	localPath := filepath.Join(dir, field+filepath.Ext(upload.Name))
	dst, err := os.Create(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create staged file: %w", err)
	}
	written, err := io.Copy(dst, upload.Content)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(localPath)
		return nil, fmt.Errorf("failed to stage file: %w", err)
	}

	staged := models.StagedFile{
		Field:     field,
		Name:      upload.Name,
		Size:      written,
		LocalPath: localPath,
		Progress:  100,
		StagedAt:  time.Now(),
	}

	if draft.StagedFiles == nil {
		draft.StagedFiles = make(map[string]models.StagedFile)
	}
	draft.StagedFiles[field] = staged
	draft.LastUpdatedAt = time.Now()

	if err := s.Drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	if err := s.Drafts.SaveStaged(ctx, draft.ID, draft.StagedFiles); err != nil {
		// The mirror only affects resume-after-reload; the draft itself holds
		// the authoritative copy for this session.
		utils.GetLogger().Warn("failed to mirror staged files", zap.String("draftID", draft.ID), zap.Error(err))
	}
	return &staged, nil
}

// UnstageFile removes a staged file and clears its presence for validation.
func (s *DefaultRegistrationService) UnstageFile(ctx context.Context, id, field string) error {
	draft, err := s.Drafts.Get(ctx, id)
	if err != nil {
		return err
	}
	staged, ok := draft.StagedFiles[field]
	if !ok {
		return ErrFileNotStaged
	}

	if staged.LocalPath != "" {
		if err := os.Remove(staged.LocalPath); err != nil && !os.IsNotExist(err) {
			utils.GetLogger().Warn("failed to remove staged binary", zap.String("path", staged.LocalPath), zap.Error(err))
		}
	}

	delete(draft.StagedFiles, field)
	draft.LastUpdatedAt = time.Now()

	if err := s.Drafts.Save(ctx, draft); err != nil {
		return err
	}
	if err := s.Drafts.SaveStaged(ctx, draft.ID, draft.StagedFiles); err != nil {
		utils.GetLogger().Warn("failed to mirror staged files", zap.String("draftID", draft.ID), zap.Error(err))
	}
	return nil
}

// cleanupStaging removes a draft's staged binaries and the staged mirror.
// Called once phase 2 completes.
func (s *DefaultRegistrationService) cleanupStaging(ctx context.Context, draft *models.RegistrationDraft) {
	for _, sf := range draft.StagedFiles {
		if sf.LocalPath != "" {
			if err := os.Remove(sf.LocalPath); err != nil && !os.IsNotExist(err) {
				utils.GetLogger().Warn("failed to remove staged binary", zap.String("path", sf.LocalPath), zap.Error(err))
			}
		}
	}
	os.Remove(filepath.Join(s.stagingRoot(), draft.ID))
	if err := s.Drafts.DeleteStaged(ctx, draft.ID); err != nil {
		utils.GetLogger().Warn("failed to clear staged mirror", zap.String("draftID", draft.ID), zap.Error(err))
	}
	if err := s.Drafts.DeleteFlags(ctx, draft.ID); err != nil {
		utils.GetLogger().Warn("failed to clear uniqueness flags", zap.String("draftID", draft.ID), zap.Error(err))
	}
}
