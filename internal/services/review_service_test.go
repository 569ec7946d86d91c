package services

import (
	"context"
	"errors"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/leadintake/internal/models"
	"github.com/yoockh/leadintake/internal/utils"
)

var reviewNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

type reviewFixture struct {
	svc   *reviewService
	apps  *fakeApps
	audit *fakeAudit
	pre   *fakePresigner
	cache *fakeCache
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	f := &reviewFixture{
		apps:  newFakeApps(),
		audit: &fakeAudit{},
		pre:   &fakePresigner{},
		cache: newFakeCache(),
	}
	f.svc = NewReviewService("agency", f.apps, f.audit, f.pre, f.cache, logger).(*reviewService)
	f.svc.now = func() time.Time { return reviewNow }
	return f
}

func (f *reviewFixture) seed(id string, receivedAt time.Time, withResume bool) models.JobApplication {
	a := models.JobApplication{
		ID:         id,
		TenantID:   "agency",
		Status:     models.StatusNew,
		RoleID:     "general",
		RoleTitle:  "General Interest",
		Name:       "Applicant " + id,
		Email:      id + "@example.com",
		ReceivedAt: receivedAt,
		UpdatedAt:  receivedAt,
	}
	if withResume {
		key := "careers/resumes/2024-01-01/" + id + "-cv.pdf"
		name, ct, size := "cv.pdf", "application/pdf", int64(1234)
		a.ResumeKey, a.ResumeFilename, a.ResumeContentType, a.ResumeSize = &key, &name, &ct, &size
	}
	f.apps.rows[id] = a
	return a
}

func strp(s string) *string { return &s }

func TestReviewUpdateStatus(t *testing.T) {
	f := newReviewFixture(t)
	seeded := f.seed("a1", reviewNow.Add(-24*time.Hour), false)

	got, err := f.svc.Update(context.Background(), "a1", ReviewInput{Status: strp("interview")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInterview, got.Status)
	assert.Equal(t, reviewNow, got.UpdatedAt)
	assert.True(t, got.UpdatedAt.After(seeded.UpdatedAt))
	assert.Equal(t, seeded.ReceivedAt, got.ReceivedAt)
	assert.Equal(t, []string{listingCachePrefix("agency")}, f.cache.deleted)
}

func TestReviewUpdateRejectsUnknownStatus(t *testing.T) {
	f := newReviewFixture(t)
	f.seed("a1", reviewNow, false)

	_, err := f.svc.Update(context.Background(), "a1", ReviewInput{Status: strp("archived")})
	var ae *utils.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 400, utils.HTTPStatus(err))
	assert.Equal(t, utils.KindInvalidStatus, ae.Kind)
	assert.Equal(t, models.StatusNew, f.apps.rows["a1"].Status)
	assert.Empty(t, f.cache.deleted)
}

func TestReviewUpdateAssignmentAndNotes(t *testing.T) {
	f := newReviewFixture(t)
	f.seed("a1", reviewNow, false)

	got, err := f.svc.Update(context.Background(), "a1", ReviewInput{
		AssignedTo: strp("  pat  "),
		Notes:      strp("Call back Tuesday"),
	})
	require.NoError(t, err)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, "pat", *got.AssignedTo)
	assert.Equal(t, "Call back Tuesday", *got.Notes)
	assert.Equal(t, models.StatusNew, got.Status, "omitted status is left alone")

	got, err = f.svc.Update(context.Background(), "a1", ReviewInput{AssignedTo: strp(" ")})
	require.NoError(t, err)
	assert.Nil(t, got.AssignedTo)
	require.NotNil(t, got.Notes, "omitted notes are left alone")
}

func TestReviewUpdateMissing(t *testing.T) {
	f := newReviewFixture(t)

	_, err := f.svc.Update(context.Background(), "nope", ReviewInput{Status: strp("hired")})
	assert.Equal(t, 404, utils.HTTPStatus(err))

	_, err = f.svc.Update(context.Background(), " ", ReviewInput{})
	assert.Equal(t, 400, utils.HTTPStatus(err))
}

func TestReviewListNewestFirstAndCached(t *testing.T) {
	f := newReviewFixture(t)
	f.seed("old", reviewNow.Add(-2*time.Hour), false)
	f.seed("new", reviewNow.Add(-time.Hour), false)

	rows, err := f.svc.List(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "new", rows[0].ID)
	assert.Equal(t, "old", rows[1].ID)

	_, err = f.svc.List(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, f.apps.listCalls)

	_, err = f.svc.Update(context.Background(), "old", ReviewInput{Status: strp("screening")})
	require.NoError(t, err)

	rows, err = f.svc.List(context.Background(), "screening", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "old", rows[0].ID)
	assert.Equal(t, 2, f.apps.listCalls)
}

func TestReviewListInvalidStatus(t *testing.T) {
	f := newReviewFixture(t)
	_, err := f.svc.List(context.Background(), "pending", 10)
	assert.Equal(t, 400, utils.HTTPStatus(err))
	assert.Zero(t, f.apps.listCalls)
}

func TestReviewGet(t *testing.T) {
	f := newReviewFixture(t)
	f.seed("a1", reviewNow, false)

	a, err := f.svc.Get(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1@example.com", a.Email)

	_, err = f.svc.Get(context.Background(), "a2")
	assert.Equal(t, 404, utils.HTTPStatus(err))
	assert.Contains(t, err.Error(), "Application not found.")
}

func TestResumeURL(t *testing.T) {
	f := newReviewFixture(t)
	f.seed("a1", reviewNow, true)

	url, err := f.svc.ResumeURL(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example/careers/resumes/2024-01-01/a1-cv.pdf?sig=get", url)
	require.Len(t, f.pre.calls, 1)
	assert.Equal(t, "GET", f.pre.calls[0].Method)
	assert.Equal(t, 5*time.Minute, f.pre.calls[0].TTL)
}

func TestResumeURLNotFound(t *testing.T) {
	f := newReviewFixture(t)
	f.seed("nocv", reviewNow, false)

	for _, id := range []string{"nocv", "missing", ""} {
		_, err := f.svc.ResumeURL(context.Background(), id)
		var ae *utils.AppError
		require.ErrorAs(t, err, &ae, "id=%q", id)
		assert.Equal(t, 404, utils.HTTPStatus(err))
		assert.Equal(t, "Resume not found.", ae.Message)
	}
	assert.Empty(t, f.pre.calls)
}

func TestResumeURLPresignFailure(t *testing.T) {
	f := newReviewFixture(t)
	f.seed("a1", reviewNow, true)
	f.pre.err = errors.New("expired credentials")

	_, err := f.svc.ResumeURL(context.Background(), "a1")
	assert.Equal(t, 503, utils.HTTPStatus(err))
}

func TestReviewWithoutBackends(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	svc := NewReviewService("agency", nil, nil, nil, nil, logger)
	ctx := context.Background()

	_, err := svc.List(ctx, "", 0)
	assert.Equal(t, 503, utils.HTTPStatus(err))
	_, err = svc.Get(ctx, "a1")
	assert.Equal(t, 503, utils.HTTPStatus(err))
	_, err = svc.Update(ctx, "a1", ReviewInput{})
	assert.Equal(t, 503, utils.HTTPStatus(err))
	_, err = svc.ResumeURL(ctx, "a1")
	assert.Equal(t, 503, utils.HTTPStatus(err))
	_, err = svc.Deliveries(ctx, "", 10)
	assert.Equal(t, 503, utils.HTTPStatus(err))
	_, err = svc.Delivery(ctx, "r1")
	assert.Equal(t, 503, utils.HTTPStatus(err))

	f := newReviewFixture(t)
	f.svc.presigner = nil
	f.seed("a1", reviewNow, true)
	_, err = f.svc.ResumeURL(ctx, "a1")
	assert.Equal(t, 503, utils.HTTPStatus(err))
}

func TestDeliveries(t *testing.T) {
	f := newReviewFixture(t)
	f.audit.recs = []models.DeliveryRecord{
		{RequestID: "q1", Kind: models.KindQuote, Delivered: true},
		{RequestID: "a1", Kind: models.KindApplication, Stored: true, Delivered: true},
	}
	ctx := context.Background()

	recs, err := f.svc.Deliveries(ctx, "quote", 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "q1", recs[0].RequestID)

	_, err = f.svc.Deliveries(ctx, "sms", 10)
	assert.Equal(t, 400, utils.HTTPStatus(err))

	rec, err := f.svc.Delivery(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, rec.Stored)

	_, err = f.svc.Delivery(ctx, "zzz")
	assert.Equal(t, 404, utils.HTTPStatus(err))
}
