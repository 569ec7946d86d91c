package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/leadintake/internal/cache"
	"github.com/yoockh/leadintake/internal/models"
	mongorepo "github.com/yoockh/leadintake/internal/repositories/mongo"
	pgrepo "github.com/yoockh/leadintake/internal/repositories/postgres"
	"github.com/yoockh/leadintake/internal/storage"
	"github.com/yoockh/leadintake/internal/utils"
)

const (
	listingCacheTTL   = time.Minute
	defaultListLimit  = 100
	maxListLimit      = 500
	msgResumeNotFound = "Resume not found."
)

func listingCachePrefix(tenantID string) string {
	return "admin:applications:" + tenantID + ":"
}

// ReviewInput mirrors the admin form. Nil means the field was not posted.
type ReviewInput struct {
	Status     *string
	AssignedTo *string
	Notes      *string
}

type ReviewService interface {
	List(ctx context.Context, status string, limit int) ([]models.JobApplication, error)
	Get(ctx context.Context, id string) (*models.JobApplication, error)
	Update(ctx context.Context, id string, in ReviewInput) (*models.JobApplication, error)
	ResumeURL(ctx context.Context, id string) (string, error)
	Deliveries(ctx context.Context, kind string, limit int64) ([]models.DeliveryRecord, error)
	Delivery(ctx context.Context, requestID string) (*models.DeliveryRecord, error)
}

type reviewService struct {
	tenantID  string
	apps      pgrepo.ApplicationRepository
	audit     mongorepo.DeliveryLogRepository
	presigner storage.Presigner
	cache     cache.Cache
	logger    *logrus.Logger

	now func() time.Time
}

func NewReviewService(tenantID string, apps pgrepo.ApplicationRepository, audit mongorepo.DeliveryLogRepository, presigner storage.Presigner, c cache.Cache, logger *logrus.Logger) ReviewService {
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &reviewService{
		tenantID:  tenantID,
		apps:      apps,
		audit:     audit,
		presigner: presigner,
		cache:     c,
		logger:    logger,
		now:       time.Now,
	}
}

func storeUnavailable(op string) error {
	return utils.EK(utils.CodeUnavailable, utils.KindBackendUnavailable, op, "Application storage is not configured.", nil)
}

func (s *reviewService) List(ctx context.Context, status string, limit int) ([]models.JobApplication, error) {
	const op = "ReviewService.List"

	if s.apps == nil {
		return nil, storeUnavailable(op)
	}

	var st models.ApplicationStatus
	if status = strings.TrimSpace(status); status != "" {
		var ok bool
		if st, ok = models.ParseApplicationStatus(status); !ok {
			return nil, utils.EK(utils.CodeInvalidArgument, utils.KindInvalidStatus, op, "Invalid status.", nil)
		}
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	label := string(st)
	if label == "" {
		label = "all"
	}
	key := fmt.Sprintf("%s%s:%d", listingCachePrefix(s.tenantID), label, limit)

	var rows []models.JobApplication
	if hit, err := s.cache.GetJSON(ctx, key, &rows); err != nil {
		s.logger.WithError(err).Warn("admin listing cache read failed")
	} else if hit {
		return rows, nil
	}

	rows, err := s.apps.List(ctx, s.tenantID, st, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list applications", err)
	}
	if err := s.cache.SetJSON(ctx, key, rows, listingCacheTTL); err != nil {
		s.logger.WithError(err).Warn("admin listing cache write failed")
	}
	return rows, nil
}

func (s *reviewService) Get(ctx context.Context, id string) (*models.JobApplication, error) {
	const op = "ReviewService.Get"

	if s.apps == nil {
		return nil, storeUnavailable(op)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, utils.EK(utils.CodeInvalidArgument, utils.KindInvalidSubmission, op, "Application id is required.", nil)
	}

	a, err := s.apps.GetByID(ctx, s.tenantID, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.EK(utils.CodeNotFound, utils.KindNotFound, op, "Application not found.", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get application", err)
	}
	return a, nil
}

func (s *reviewService) Update(ctx context.Context, id string, in ReviewInput) (*models.JobApplication, error) {
	const op = "ReviewService.Update"

	if s.apps == nil {
		return nil, storeUnavailable(op)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, utils.EK(utils.CodeInvalidArgument, utils.KindInvalidSubmission, op, "Application id is required.", nil)
	}

	var upd models.ReviewUpdate
	if in.Status != nil {
		st, ok := models.ParseApplicationStatus(strings.TrimSpace(*in.Status))
		if !ok {
			return nil, utils.EK(utils.CodeInvalidArgument, utils.KindInvalidStatus, op, "Invalid status.", nil)
		}
		upd.Status = &st
	}
	if in.AssignedTo != nil {
		v := strings.TrimSpace(*in.AssignedTo)
		upd.AssignedTo = &v
	}
	if in.Notes != nil {
		v := strings.TrimSpace(*in.Notes)
		upd.Notes = &v
	}

	a, err := s.apps.UpdateReview(ctx, s.tenantID, id, upd, s.now().UTC())
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.EK(utils.CodeNotFound, utils.KindNotFound, op, "Application not found.", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to update application", err)
	}

	if err := s.cache.DelPrefix(ctx, listingCachePrefix(s.tenantID)); err != nil {
		s.logger.WithError(err).Warn("admin listing cache invalidation failed")
	}
	s.logger.WithFields(logrus.Fields{
		"application_id": a.ID,
		"status":         a.Status,
	}).Info("application updated")
	return a, nil
}

func (s *reviewService) ResumeURL(ctx context.Context, id string) (string, error) {
	const op = "ReviewService.ResumeURL"

	if s.apps == nil {
		return "", storeUnavailable(op)
	}
	if s.presigner == nil {
		return "", utils.EK(utils.CodeUnavailable, utils.KindBackendUnavailable, op, "Resume storage is not configured.", nil)
	}

	notFound := utils.EK(utils.CodeNotFound, utils.KindNotFound, op, msgResumeNotFound, nil)
	id = strings.TrimSpace(id)
	if id == "" {
		return "", notFound
	}
	a, err := s.apps.GetByID(ctx, s.tenantID, id)
	if errors.Is(err, utils.ErrNotFound) {
		return "", notFound
	}
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to get application", err)
	}
	if !a.HasResume() {
		return "", notFound
	}

	url, err := s.presigner.PresignGet(ctx, *a.ResumeKey, ResumeDownloadTTL)
	if err != nil {
		return "", utils.EK(utils.CodeUnavailable, utils.KindBackendUnavailable, op, "Resume storage is unavailable.", err)
	}
	return url, nil
}

func (s *reviewService) Deliveries(ctx context.Context, kind string, limit int64) ([]models.DeliveryRecord, error) {
	const op = "ReviewService.Deliveries"

	if s.audit == nil {
		return nil, utils.EK(utils.CodeUnavailable, utils.KindBackendUnavailable, op, "Delivery log is not configured.", nil)
	}
	k := models.LeadKind(strings.TrimSpace(kind))
	if k != "" && k != models.KindQuote && k != models.KindApplication {
		return nil, utils.EK(utils.CodeInvalidArgument, utils.KindInvalidSubmission, op, "Invalid kind.", nil)
	}
	out, err := s.audit.ListRecent(ctx, k, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list delivery log", err)
	}
	return out, nil
}

func (s *reviewService) Delivery(ctx context.Context, requestID string) (*models.DeliveryRecord, error) {
	const op = "ReviewService.Delivery"

	if s.audit == nil {
		return nil, utils.EK(utils.CodeUnavailable, utils.KindBackendUnavailable, op, "Delivery log is not configured.", nil)
	}
	rec, err := s.audit.GetByRequestID(ctx, strings.TrimSpace(requestID))
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.EK(utils.CodeNotFound, utils.KindNotFound, op, "Delivery record not found.", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get delivery record", err)
	}
	return rec, nil
}
