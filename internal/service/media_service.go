package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"alcyxob/fitcoach/internal/storage"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const mediaKeyPrefix = "media"

// UploadURLResponse holds the presigned URL and the key the client must confirm.
type UploadURLResponse struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ConfirmUploadInput is sent by the client after the PUT to storage succeeded.
type ConfirmUploadInput struct {
	OwnerID     primitive.ObjectID
	ObjectKey   string
	FileName    string
	ContentType string
	Size        int64
}

// MediaService hands out presigned upload URLs and records finished uploads.
type MediaService interface {
	RequestUploadURL(ctx context.Context, ownerID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	ConfirmUpload(ctx context.Context, in ConfirmUploadInput) (*domain.Upload, error)
	DeleteUpload(ctx context.Context, ownerID, uploadID primitive.ObjectID) error
}

type mediaService struct {
	uploadRepo  repository.UploadRepository
	fileStorage storage.FileStorage
	logger      *zap.Logger
	now         func() time.Time
}

// NewMediaService creates a new MediaService.
func NewMediaService(uploadRepo repository.UploadRepository, fileStorage storage.FileStorage, logger *zap.Logger) MediaService {
	return &mediaService{
		uploadRepo:  uploadRepo,
		fileStorage: fileStorage,
		logger:      logger,
		now:         time.Now,
	}
}

func supportedMedia(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "video/")
}

func ownerPrefix(ownerID primitive.ObjectID) string {
	return path.Join(mediaKeyPrefix, ownerID.Hex()) + "/"
}

// RequestUploadURL generates a pre-signed URL for uploading one image or video.
func (s *mediaService) RequestUploadURL(ctx context.Context, ownerID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	// 1. Validate Inputs
	if !supportedMedia(contentType) {
		return nil, ErrUnsupportedMediaType
	}

	// 2. Generate a unique object key
	fileExtension := ""
	if parts := strings.SplitN(contentType, "/", 2); len(parts) == 2 {
		fileExtension = strings.ToLower(parts[1])
	}
	objectKey := ownerPrefix(ownerID) + fmt.Sprintf("%s.%s", uuid.NewString(), fileExtension)

	// 3. Generate the pre-signed URL
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}

	return &UploadURLResponse{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
		ExpiresAt: s.now().UTC().Add(storage.DefaultPresignedURLExpiry),
	}, nil
}

// ConfirmUpload records the upload and returns its permanent URL.
// Confirming the same key twice returns the first record.
func (s *mediaService) ConfirmUpload(ctx context.Context, in ConfirmUploadInput) (*domain.Upload, error) {
	// 1. Validate Inputs
	if in.ObjectKey == "" || !strings.HasPrefix(in.ObjectKey, ownerPrefix(in.OwnerID)) {
		return nil, ErrInvalidObjectKey
	}
	if !supportedMedia(in.ContentType) {
		return nil, ErrUnsupportedMediaType
	}
	if in.Size < 0 {
		return nil, fmt.Errorf("%w: size cannot be negative", ErrValidation)
	}

	upload := &domain.Upload{
		OwnerID:     in.OwnerID,
		ObjectKey:   in.ObjectKey,
		FileName:    in.FileName,
		ContentType: in.ContentType,
		Size:        in.Size,
		URL:         s.fileStorage.PublicURL(in.ObjectKey),
	}

	// 2. Save metadata
	id, err := s.uploadRepo.Create(ctx, upload)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return s.uploadRepo.GetByObjectKey(ctx, in.ObjectKey)
		}
		return nil, err
	}
	upload.ID = id
	return upload, nil
}

// DeleteUpload removes the object from storage, then its metadata.
func (s *mediaService) DeleteUpload(ctx context.Context, ownerID, uploadID primitive.ObjectID) error {
	upload, err := s.uploadRepo.GetByID(ctx, uploadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUploadNotFound
		}
		return err
	}
	if upload.OwnerID != ownerID {
		return ErrUploadAccessDenied
	}
	if err := s.fileStorage.DeleteObject(ctx, upload.ObjectKey); err != nil {
		return err
	}
	if err := s.uploadRepo.Delete(ctx, upload.ID); err != nil {
		s.logger.Warn("upload metadata left after object delete",
			zap.String("upload_id", upload.ID.Hex()),
			zap.Error(err))
		return err
	}
	return nil
}
