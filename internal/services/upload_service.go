package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/leadintake/internal/metrics"
	"github.com/yoockh/leadintake/internal/models"
	"github.com/yoockh/leadintake/internal/storage"
	"github.com/yoockh/leadintake/internal/utils"
)

type UploadService interface {
	Authorize(ctx context.Context, meta ResumeMeta) (*models.ResumeUploadGrant, error)
}

type uploadService struct {
	presigner storage.Presigner
	maxBytes  int64
	logger    *logrus.Logger
	metrics   *metrics.Metrics

	now   func() time.Time
	newID func() string
}

// NewUploadService accepts a nil presigner; every request then fails with
// UploadBackendUnavailable.
func NewUploadService(presigner storage.Presigner, maxBytes int64, logger *logrus.Logger, m *metrics.Metrics) UploadService {
	if logger == nil {
		logger = logrus.New()
	}
	return &uploadService{
		presigner: presigner,
		maxBytes:  maxBytes,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *uploadService) Authorize(ctx context.Context, meta ResumeMeta) (*models.ResumeUploadGrant, error) {
	const op = "UploadService.Authorize"

	meta, err := validateResumeMeta(op, meta, s.maxBytes)
	if err != nil {
		s.metrics.UploadGrant("rejected")
		return nil, err
	}
	if s.presigner == nil {
		s.metrics.UploadGrant("unavailable")
		return nil, utils.EK(utils.CodeUnavailable, utils.KindUploadBackendUnavailable, op, msgUploadBackendOff, nil)
	}

	key := BuildResumeKey(s.now(), s.newID(), meta.Filename)
	url, err := s.presigner.PresignPut(ctx, key, meta.ContentType, UploadURLTTL)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("presign resume upload failed")
		s.metrics.UploadGrant("unavailable")
		return nil, utils.EK(utils.CodeUnavailable, utils.KindUploadBackendUnavailable, op, msgUploadBackendOff, err)
	}

	s.metrics.UploadGrant("issued")
	return &models.ResumeUploadGrant{
		Key:              key,
		UploadURL:        url,
		ExpiresInSeconds: int(UploadURLTTL / time.Second),
	}, nil
}
