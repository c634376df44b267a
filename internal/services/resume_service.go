package services

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/mocklyai/mockly/internal/models"
	pgrepo "github.com/mocklyai/mockly/internal/repositories/postgres"
	"github.com/mocklyai/mockly/internal/storage"
	"github.com/mocklyai/mockly/internal/utils"
)

type ResumeService interface {
	Upload(ctx context.Context, userID, fileName, mimeType string, fileSize int, r io.Reader) (*models.Resume, error)
}

type resumeService struct {
	resumes  pgrepo.ResumeRepository
	uploader storage.Uploader
}

func NewResumeService(resumes pgrepo.ResumeRepository, uploader storage.Uploader) ResumeService {
	return &resumeService{resumes: resumes, uploader: uploader}
}

func (s *resumeService) Upload(ctx context.Context, userID, fileName, mimeType string, fileSize int, r io.Reader) (*models.Resume, error) {
	const op = "ResumeService.Upload"

	if userID == "" || fileName == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and file_name are required", nil)
	}
	if s.uploader == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "resume storage is not configured", nil)
	}

	objectKey := "resumes/" + userID + "/" + uuid.NewString() + ".pdf"
	storedKey, err := s.uploader.Upload(ctx, objectKey, mimeType, r)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to store resume", err)
	}

	row := &models.Resume{
		ID:        uuid.NewString(),
		UserID:    userID,
		FileName:  fileName,
		ObjectKey: storedKey,
		FileSize:  fileSize,
		MimeType:  mimeType,
		UploadAt:  time.Now().UTC(),
	}
	if err := s.resumes.Insert(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist resume metadata", err)
	}
	return row, nil
}
