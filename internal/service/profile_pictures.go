package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"course-portal/internal/storage"
)

// MaxProfilePicSize caps profile picture uploads.
const MaxProfilePicSize = 5 << 20

// sniffLen matches mimetype's default read limit.
const sniffLen = 3072

// Upload is a client-supplied file.
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// ProfilePictures validates images and keeps them in object storage. A nil
// store disables uploads; users then simply have no picture.
type ProfilePictures struct {
	store     storage.Service
	keyPrefix string
	urlTTL    time.Duration
	logger    logrus.FieldLogger
}

func NewProfilePictures(store storage.Service, keyPrefix string, urlTTL time.Duration, logger logrus.FieldLogger) *ProfilePictures {
	if urlTTL <= 0 {
		urlTTL = time.Hour
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ProfilePictures{
		store:     store,
		keyPrefix: strings.Trim(keyPrefix, "/"),
		urlTTL:    urlTTL,
		logger:    logger,
	}
}

// Save validates up and stores it, returning the object key.
func (p *ProfilePictures) Save(ctx context.Context, up *Upload) (string, error) {
	if p == nil || p.store == nil {
		return "", invalid("profile_pic", ErrUploadsDisabled)
	}
	if up.Size > MaxProfilePicSize {
		return "", invalid("profile_pic", ErrImageTooLarge)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(up.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("read profile picture: %w", err)
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	if n == 0 || !strings.HasPrefix(mt.String(), "image/") {
		return "", invalid("profile_pic", ErrInvalidImage)
	}

	key := path.Join(p.keyPrefix, uuid.NewString()+mt.Extension())
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), up.Body), MaxProfilePicSize)
	if err := p.store.PutObject(ctx, key, body, mt.String()); err != nil {
		return "", fmt.Errorf("store profile picture: %w", err)
	}
	return key, nil
}

// URL resolves a stored key to a client-facing URL. Failures degrade to an
// empty string.
func (p *ProfilePictures) URL(ctx context.Context, key string) string {
	if key == "" || p == nil || p.store == nil {
		return ""
	}
	url, err := p.store.GetObjectURL(ctx, key, p.urlTTL)
	if err != nil {
		p.logger.WithError(err).WithField("key", key).Warn("resolve profile picture url")
		return ""
	}
	return url
}

// Delete removes key, logging instead of failing.
func (p *ProfilePictures) Delete(ctx context.Context, key string) {
	if key == "" || p == nil || p.store == nil {
		return
	}
	if err := p.store.DeleteObject(ctx, key); err != nil {
		p.logger.WithError(err).WithField("key", key).Warn("delete profile picture")
	}
}
