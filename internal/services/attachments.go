package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/policy"
	"github.com/localnerve/recipedb/internal/storage"
	"github.com/localnerve/recipedb/internal/types"
	"gorm.io/gorm"
)

// UploadInput is a file received for storage
type UploadInput struct {
	OriginalName string
	Mime         string
	Size         int64
	Body         io.Reader
}

// AttachmentService stores uploads and resolves attachment ids to files
type AttachmentService struct {
	DB       *gorm.DB
	Store    storage.Store
	MaxBytes int64
}

// Upload writes the file to the store and records it
func (s *AttachmentService) Upload(ctx context.Context, actor *policy.Actor, in UploadInput) (*AttachmentResult, error) {
	if actor == nil {
		return nil, types.ErrAuthenticationRequired
	}

	if in.Body == nil || in.OriginalName == "" {
		return nil, types.NewValidationError("file", msgRequired("file"))
	}
	if s.MaxBytes > 0 && in.Size > s.MaxBytes {
		return nil, types.NewValidationError("file",
			fmt.Sprintf("The file field must not be greater than %d kilobytes.", s.MaxBytes/1024))
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(in.OriginalName)), ".")
	contentType := in.Mime
	if contentType == "" {
		contentType = mime.TypeByExtension("." + ext)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	owner := actor.ID
	attachment := models.Attachment{
		UserID:       &owner,
		Name:         uuid.NewString(),
		OriginalName: filepath.Base(in.OriginalName),
		Mime:         contentType,
		Extension:    ext,
		Size:         in.Size,
		Disk:         s.Store.Disk(),
		Path:         time.Now().UTC().Format("2006/01/02/"),
	}

	hash := sha256.New()
	key := attachment.Key()
	if err := s.Store.Put(ctx, key, io.TeeReader(in.Body, hash), in.Size, contentType); err != nil {
		return nil, types.Persistence("Error storing attachment", err)
	}
	attachment.Hash = hex.EncodeToString(hash.Sum(nil))

	if err := s.DB.Create(&attachment).Error; err != nil {
		if delErr := s.Store.Delete(ctx, key); delErr != nil {
			log.Printf("Failed to remove orphaned upload %s: %v", key, delErr)
		}
		return nil, types.Persistence("Error storing attachment", err)
	}

	result := presentAttachment(&attachment, s.Store)
	return &result, nil
}

// Get returns an attachment's metadata and URL
func (s *AttachmentService) Get(actor *policy.Actor, id uint64) (*AttachmentResult, error) {
	if actor == nil {
		return nil, types.ErrAuthenticationRequired
	}

	var attachment models.Attachment
	if err := quiet(s.DB).First(&attachment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Attachment")
		}
		return nil, types.Persistence("Error loading attachment", err)
	}

	result := presentAttachment(&attachment, s.Store)
	return &result, nil
}
