package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yoockh/leadintake/internal/delivery"
	"github.com/yoockh/leadintake/internal/models"
	"github.com/yoockh/leadintake/internal/utils"
)

type fakeApps struct {
	mu        sync.Mutex
	rows      map[string]models.JobApplication
	insertErr error
	listCalls int
}

func newFakeApps() *fakeApps {
	return &fakeApps{rows: map[string]models.JobApplication{}}
}

func (f *fakeApps) Insert(_ context.Context, a *models.JobApplication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, dup := f.rows[a.ID]; dup {
		return errors.New("duplicate key value violates unique constraint")
	}
	f.rows[a.ID] = *a
	return nil
}

func (f *fakeApps) GetByID(_ context.Context, tenantID, id string) (*models.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok || a.TenantID != tenantID {
		return nil, utils.ErrNotFound
	}
	return &a, nil
}

func (f *fakeApps) List(_ context.Context, tenantID string, status models.ApplicationStatus, limit int) ([]models.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var out []models.JobApplication
	for _, a := range f.rows {
		if a.TenantID != tenantID || (status != "" && a.Status != status) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.After(out[j].ReceivedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeApps) UpdateReview(_ context.Context, tenantID, id string, upd models.ReviewUpdate, at time.Time) (*models.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok || a.TenantID != tenantID {
		return nil, utils.ErrNotFound
	}
	if upd.Status != nil {
		a.Status = *upd.Status
	}
	if upd.AssignedTo != nil {
		a.AssignedTo = nilIfEmpty(*upd.AssignedTo)
	}
	if upd.Notes != nil {
		a.Notes = nilIfEmpty(*upd.Notes)
	}
	a.UpdatedAt = at
	f.rows[id] = a
	return &a, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type fakeAudit struct {
	mu   sync.Mutex
	recs []models.DeliveryRecord
	err  error
}

func (f *fakeAudit) Insert(_ context.Context, rec *models.DeliveryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.recs = append(f.recs, *rec)
	return nil
}

func (f *fakeAudit) GetByRequestID(_ context.Context, requestID string) (*models.DeliveryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.recs {
		if r.RequestID == requestID {
			return &r, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeAudit) ListRecent(_ context.Context, kind models.LeadKind, limit int64) ([]models.DeliveryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DeliveryRecord
	for _, r := range f.recs {
		if kind == "" || r.Kind == kind {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *fakeCache) DelPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, prefix)
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

type presignCall struct {
	Method      string
	Key         string
	ContentType string
	TTL         time.Duration
}

type fakePresigner struct {
	mu    sync.Mutex
	calls []presignCall
	err   error
}

func (p *fakePresigner) PresignPut(_ context.Context, key, contentType string, ttl time.Duration) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, presignCall{"PUT", key, contentType, ttl})
	if p.err != nil {
		return "", p.err
	}
	return "https://storage.example/" + key + "?sig=put", nil
}

func (p *fakePresigner) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, presignCall{"GET", key, "", ttl})
	if p.err != nil {
		return "", p.err
	}
	return "https://storage.example/" + key + "?sig=get", nil
}

type fakeDeliverer struct {
	mu     sync.Mutex
	msgs   []delivery.Message
	report delivery.Report
}

func (d *fakeDeliverer) Deliver(_ context.Context, msg delivery.Message) delivery.Report {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.msgs = append(d.msgs, msg)
	return d.report
}

func (d *fakeDeliverer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.msgs)
}

var (
	okChannel     = models.ChannelOutcome{Configured: true, OK: true}
	failedChannel = models.ChannelOutcome{Configured: true, Error: "webhook responded 500"}
)
