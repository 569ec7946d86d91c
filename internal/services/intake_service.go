package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/leadintake/internal/cache"
	"github.com/yoockh/leadintake/internal/careers"
	"github.com/yoockh/leadintake/internal/delivery"
	"github.com/yoockh/leadintake/internal/metrics"
	"github.com/yoockh/leadintake/internal/models"
	mongorepo "github.com/yoockh/leadintake/internal/repositories/mongo"
	pgrepo "github.com/yoockh/leadintake/internal/repositories/postgres"
	"github.com/yoockh/leadintake/internal/utils"
	"gorm.io/datatypes"
)

const (
	msgQuoteRequired       = "Please provide your name and phone number."
	msgApplicationRequired = "Please provide your name and a valid email address."
)

type QuoteInput struct {
	Company   string // honeypot
	Name      string
	Phone     string
	Email     string
	Coverage  string
	Zip       string
	Notes     string
	Source    string
	StartedAt string
}

type ApplicationInput struct {
	Company           string // honeypot
	RoleID            string
	Name              string
	Email             string
	Phone             string
	ResumeKey         string
	ResumeFilename    string
	ResumeContentType string
	ResumeSize        string
	Message           string
	Source            string
	StartedAt         string
	UserAgent         string
	IP                string
}

type QuoteResult struct {
	RequestID string
}

type ApplicationResult struct {
	RequestID     string
	ApplicationID *string
}

type IntakeService interface {
	SubmitQuote(ctx context.Context, in QuoteInput) (*QuoteResult, error)
	SubmitApplication(ctx context.Context, in ApplicationInput) (*ApplicationResult, error)
}

// Deliverer is satisfied by *delivery.Fanout.
type Deliverer interface {
	Deliver(ctx context.Context, msg delivery.Message) delivery.Report
}

type IntakeConfig struct {
	TenantID             string
	ResumeMaxBytes       int64
	SubjectPrefix        string
	ReplyToFallback      string
	PublicBaseURL        string
	DeliveryLogRetention time.Duration
}

// IntakeDeps lists the collaborators. Applications, Audit and Cache may be
// nil when the backend is not configured.
type IntakeDeps struct {
	Applications pgrepo.ApplicationRepository
	Audit        mongorepo.DeliveryLogRepository
	Cache        cache.Cache
	Quotes       Deliverer
	Careers      Deliverer
	Logger       *logrus.Logger
	Metrics      *metrics.Metrics
}

type intakeService struct {
	cfg IntakeConfig
	IntakeDeps

	now   func() time.Time
	newID func() string
}

func NewIntakeService(cfg IntakeConfig, deps IntakeDeps) IntakeService {
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	if deps.Cache == nil {
		deps.Cache = cache.Nop{}
	}
	if cfg.DeliveryLogRetention <= 0 {
		cfg.DeliveryLogRetention = 30 * 24 * time.Hour
	}
	return &intakeService{cfg: cfg, IntakeDeps: deps, now: time.Now, newID: uuid.NewString}
}

func (s *intakeService) SubmitQuote(ctx context.Context, in QuoteInput) (*QuoteResult, error) {
	const op = "IntakeService.SubmitQuote"

	requestID, receivedAt := s.newID(), s.now().UTC()
	if honeypotTripped(in.Company) {
		s.suppress(ctx, models.KindQuote, requestID, receivedAt, reasonHoneypot)
		return &QuoteResult{RequestID: requestID}, nil
	}

	q := models.QuoteRequest{
		RequestID:  requestID,
		ReceivedAt: receivedAt,
		Name:       strings.TrimSpace(in.Name),
		Phone:      strings.TrimSpace(in.Phone),
		Email:      strings.TrimSpace(in.Email),
		Coverage:   strings.TrimSpace(in.Coverage),
		Zip:        strings.TrimSpace(in.Zip),
		Notes:      strings.TrimSpace(in.Notes),
		Source:     strings.TrimSpace(in.Source),
		FillTimeMs: fillTimeMs(in.StartedAt, receivedAt),
	}
	if q.Name == "" || q.Phone == "" {
		return nil, utils.EK(utils.CodeInvalidArgument, utils.KindInvalidSubmission, op, msgQuoteRequired, nil)
	}
	if tooFast(q.FillTimeMs) {
		s.suppress(ctx, models.KindQuote, requestID, receivedAt, reasonFillTime)
		return &QuoteResult{RequestID: requestID}, nil
	}

	rep := s.deliver(ctx, s.Quotes, s.quoteMessage(q))
	s.settle(ctx, settlement{
		kind:       models.KindQuote,
		requestID:  requestID,
		receivedAt: receivedAt,
		payload:    quotePayload(q),
		report:     rep,
	})
	return &QuoteResult{RequestID: requestID}, nil
}

func (s *intakeService) SubmitApplication(ctx context.Context, in ApplicationInput) (*ApplicationResult, error) {
	const op = "IntakeService.SubmitApplication"

	requestID, receivedAt := s.newID(), s.now().UTC()
	if honeypotTripped(in.Company) {
		s.suppress(ctx, models.KindApplication, requestID, receivedAt, reasonHoneypot)
		return &ApplicationResult{RequestID: requestID}, nil
	}

	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || !strings.Contains(email, "@") {
		return nil, utils.EK(utils.CodeInvalidArgument, utils.KindInvalidSubmission, op, msgApplicationRequired, nil)
	}

	role := careers.Resolve(strings.TrimSpace(in.RoleID))
	fill := fillTimeMs(in.StartedAt, receivedAt)
	suspicious := tooFast(fill)

	app := &models.JobApplication{
		ID:         requestID,
		TenantID:   s.cfg.TenantID,
		Status:     models.StatusNew,
		RoleID:     role.ID,
		RoleTitle:  role.Title,
		Name:       name,
		Email:      email,
		Phone:      strings.TrimSpace(in.Phone),
		Message:    strings.TrimSpace(in.Message),
		Source:     strings.TrimSpace(in.Source),
		UserAgent:  strings.TrimSpace(in.UserAgent),
		IP:         strings.TrimSpace(in.IP),
		ReceivedAt: receivedAt,
		UpdatedAt:  receivedAt,
		Meta:       datatypes.NewJSONType(models.ApplicationMeta{FillTimeMs: fill, Suspicious: suspicious}),
	}

	if key := strings.TrimSpace(in.ResumeKey); key != "" {
		rm, err := validateResumeMeta(op, ResumeMeta{
			Filename:    in.ResumeFilename,
			ContentType: in.ResumeContentType,
			Size:        parseSize(in.ResumeSize),
		}, s.cfg.ResumeMaxBytes)
		if err != nil {
			return nil, err
		}
		if !validResumeKey(key) {
			return nil, utils.EK(utils.CodeInvalidArgument, utils.KindInvalidUploadMetadata, op, msgUploadMetadata, nil)
		}
		size := int64(rm.Size)
		app.ResumeKey = &key
		app.ResumeFilename = &rm.Filename
		app.ResumeContentType = &rm.ContentType
		app.ResumeSize = &size
	}

	storeConfigured := s.Applications != nil
	stored := false
	if storeConfigured {
		if err := s.Applications.Insert(ctx, app); err != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{
				"request_id": requestID,
				"kind":       models.KindApplication,
			}).Error("application not stored")
		} else {
			stored = true
			s.invalidateListing(ctx)
		}
	}

	rep := s.deliver(ctx, s.Careers, s.applicationMessage(app, suspicious, stored))
	s.settle(ctx, settlement{
		kind:            models.KindApplication,
		requestID:       requestID,
		receivedAt:      receivedAt,
		applicationID:   app.ID,
		payload:         applicationPayload(app, suspicious, stored, s.resumeLink(app)),
		report:          rep,
		storeConfigured: storeConfigured,
		stored:          stored,
		suspicious:      suspicious,
	})

	res := &ApplicationResult{RequestID: requestID}
	if stored {
		res.ApplicationID = &app.ID
	}
	return res, nil
}

func (s *intakeService) deliver(ctx context.Context, d Deliverer, msg delivery.Message) delivery.Report {
	if d == nil {
		return delivery.Report{}
	}
	return d.Deliver(ctx, msg)
}

func (s *intakeService) invalidateListing(ctx context.Context) {
	if err := s.Cache.DelPrefix(ctx, listingCachePrefix(s.cfg.TenantID)); err != nil {
		s.Logger.WithError(err).Warn("admin listing cache invalidation failed")
	}
}

type settlement struct {
	kind            models.LeadKind
	requestID       string
	receivedAt      time.Time
	applicationID   string
	payload         any
	report          delivery.Report
	storeConfigured bool
	stored          bool
	suspicious      bool
}

// settle decides what the operational log retains. An undelivered lead is
// logged in full; a stored lead with no messaging channel only by id.
func (s *intakeService) settle(ctx context.Context, st settlement) {
	delivered := st.stored || st.report.AnyOK()

	fields := logrus.Fields{
		"request_id":  st.requestID,
		"kind":        st.kind,
		"received_at": st.receivedAt.Format(time.RFC3339Nano),
	}
	if st.stored {
		fields["application_id"] = st.applicationID
	}

	switch {
	case !delivered:
		fields["payload"] = st.payload
		fields["webhook"] = st.report.Webhook
		fields["email"] = st.report.Email
		fields["store_configured"] = st.storeConfigured
		s.Logger.WithFields(fields).Error("lead not delivered by any channel; payload retained in log")
	case st.stored && !st.report.AnyConfigured():
		s.Logger.WithFields(fields).Info("lead stored")
	default:
		fields["stored"] = st.stored
		fields["webhook_ok"] = st.report.Webhook.OK
		fields["email_ok"] = st.report.Email.OK
		fields["suspicious"] = st.suspicious
		s.Logger.WithFields(fields).Info("lead delivered")
	}

	outcome := "delivered"
	if !delivered {
		outcome = "undelivered"
	}
	s.Metrics.Submission(string(st.kind), outcome)

	s.audit(ctx, &models.DeliveryRecord{
		RequestID:       st.requestID,
		Kind:            st.kind,
		ApplicationID:   optionalID(st.stored, st.applicationID),
		StoreConfigured: st.storeConfigured,
		Stored:          st.stored,
		Webhook:         st.report.Webhook,
		Email:           st.report.Email,
		Delivered:       delivered,
		Suspicious:      st.suspicious,
		ReceivedAt:      st.receivedAt,
	})
}

func (s *intakeService) suppress(ctx context.Context, kind models.LeadKind, requestID string, receivedAt time.Time, reason string) {
	s.Logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"kind":       kind,
		"reason":     reason,
	}).Info("submission suppressed by spam heuristic")
	s.Metrics.Suppressed(string(kind), reason)

	s.audit(ctx, &models.DeliveryRecord{
		RequestID:  requestID,
		Kind:       kind,
		Suppressed: reason,
		ReceivedAt: receivedAt,
	})
}

func (s *intakeService) audit(ctx context.Context, rec *models.DeliveryRecord) {
	if s.Audit == nil {
		return
	}
	rec.ExpiresAt = rec.ReceivedAt.Add(s.cfg.DeliveryLogRetention)
	if err := s.Audit.Insert(context.WithoutCancel(ctx), rec); err != nil {
		s.Logger.WithError(err).WithField("request_id", rec.RequestID).Warn("delivery audit write failed")
	}
}

func optionalID(ok bool, id string) string {
	if ok {
		return id
	}
	return ""
}
