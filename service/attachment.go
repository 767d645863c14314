package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"contracthub/model"
	"contracthub/pkg/apperr"
	"contracthub/pkg/logger"
)

// Accepted upload types: PDF and the Word family (legacy .doc and .docx).
var allowedMime = regexp.MustCompile(`/(pdf|msword|docx|vnd\.openxmlformats-officedocument\.wordprocessingml\.document)$`)

// AttachmentService binds uploaded files to contracts and gates downloads
// by ownership and role.
type AttachmentService struct {
	db       *gorm.DB
	store    BlobStore
	maxBytes int64
}

func NewAttachmentService(db *gorm.DB, store BlobStore, maxSizeMB int64) *AttachmentService {
	return &AttachmentService{
		db:       db,
		store:    store,
		maxBytes: maxSizeMB * 1024 * 1024,
	}
}

// Upload validates the declared type and size, writes the file under a
// timestamp-suffixed name and persists the metadata row. The file is written
// before the row; a crash in between leaves an orphaned file, detected lazily
// at download time.
func (s *AttachmentService) Upload(ctx context.Context, contractID uint, r io.Reader, size int64, originalName, mimeType string) (*model.Attachment, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Contract{}).Where("id = ?", contractID).Count(&count).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if count == 0 {
		return nil, apperr.NotFound("contract not found")
	}

	if !allowedMime.MatchString(mimeType) {
		return nil, apperr.UnsupportedMedia("only PDF and Word files are allowed")
	}
	if size > s.maxBytes {
		return nil, apperr.PayloadTooLarge(fmt.Sprintf("file exceeds the %d MiB limit", s.maxBytes/(1024*1024)))
	}

	displayName := DecodeFileName(originalName)
	storedPath, err := s.uniquePath(ctx, displayName)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if err := s.store.Save(ctx, storedPath, r, size, mimeType); err != nil {
		return nil, apperr.Internal(err)
	}

	attachment := &model.Attachment{
		FileName:   displayName,
		FilePath:   storedPath,
		MimeType:   mimeType,
		FileSize:   size,
		ContractID: contractID,
	}
	if err := s.db.WithContext(ctx).Create(attachment).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	logger.Info(ctx, "attachment uploaded",
		"contract_id", contractID,
		"attachment_id", attachment.ID,
		"path", storedPath,
		"size", size,
	)
	return attachment, nil
}

// GetForDownload returns the attachment row and an open stream of its bytes.
// The requester must be an ADMIN or the creator of the owning contract.
// A missing backing file is reported as NotFound, same as a missing row.
func (s *AttachmentService) GetForDownload(ctx context.Context, id uint, requester *model.User) (*model.Attachment, io.ReadCloser, error) {
	var attachment model.Attachment
	err := s.db.WithContext(ctx).Preload("Contract").First(&attachment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("attachment not found")
		}
		return nil, nil, apperr.Internal(err)
	}

	if requester != nil && requester.Role != model.RoleAdmin {
		owner := attachment.Contract != nil &&
			attachment.Contract.CreatedByID != nil &&
			*attachment.Contract.CreatedByID == requester.ID
		if !owner {
			return nil, nil, apperr.Forbidden("not permitted to download this attachment")
		}
	}

	stream, err := s.store.Open(ctx, attachment.FilePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn(ctx, "attachment file missing from storage",
				"attachment_id", attachment.ID, "path", attachment.FilePath)
			return nil, nil, apperr.NotFound("attachment file not found")
		}
		return nil, nil, apperr.Internal(err)
	}
	return &attachment, stream, nil
}

// uniquePath builds "{base}-{unixMillis}{ext}" and bumps the suffix until no
// stored file collides, so same-named uploads in the same millisecond still
// get distinct paths.
func (s *AttachmentService) uniquePath(ctx context.Context, name string) (string, error) {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	ts := time.Now().UnixMilli()

	for {
		candidate := fmt.Sprintf("%s-%d%s", base, ts, ext)
		exists, err := s.store.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		ts++
	}
}

// DecodeFileName recovers a UTF-8 filename that arrived as latin-1 bytes.
// Multipart senders that transmit raw UTF-8 without declaring it produce
// names where each byte became one rune; reinterpreting those bytes as UTF-8
// restores the original text. Names that are already plain UTF-8 pass
// through unchanged.
func DecodeFileName(name string) string {
	raw := make([]byte, 0, len(name))
	for _, r := range name {
		if r > 0xFF {
			// Contains real multi-byte runes; already decoded
			return name
		}
		raw = append(raw, byte(r))
	}
	if utf8.Valid(raw) {
		return string(raw)
	}
	return name
}
