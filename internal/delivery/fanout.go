package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/leadintake/internal/metrics"
	"github.com/yoockh/leadintake/internal/models"
	"golang.org/x/sync/errgroup"
)

// Fanout sends one message to the webhook and email channels at once. Either
// sender may be nil, which marks that channel unconfigured.
type Fanout struct {
	Webhook Sender
	Email   Sender
	Timeout time.Duration
	Logger  *logrus.Logger
	Metrics *metrics.Metrics
}

type Report struct {
	Webhook models.ChannelOutcome
	Email   models.ChannelOutcome
}

func (r Report) AnyConfigured() bool { return r.Webhook.Configured || r.Email.Configured }
func (r Report) AnyOK() bool         { return r.Webhook.OK || r.Email.OK }

// Deliver never returns an error: failures are recorded per channel. It
// detaches from the caller's cancellation so a client hanging up does not
// abort delivery, but each channel is still bounded by Timeout.
func (f *Fanout) Deliver(ctx context.Context, msg Message) Report {
	ctx = context.WithoutCancel(ctx)

	var rep Report
	var g errgroup.Group
	g.Go(func() error {
		rep.Webhook = f.send(ctx, f.Webhook, msg)
		return nil
	})
	g.Go(func() error {
		rep.Email = f.send(ctx, f.Email, msg)
		return nil
	})
	_ = g.Wait()
	return rep
}

func (f *Fanout) send(ctx context.Context, s Sender, msg Message) models.ChannelOutcome {
	if s == nil {
		return models.ChannelOutcome{}
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := s.Send(ctx, msg)
	f.Metrics.Delivery(s.Name(), err == nil)
	if err == nil {
		return models.ChannelOutcome{Configured: true, OK: true}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		err = errors.New(s.Name() + " timed out after " + timeout.String())
	}
	if f.Logger != nil {
		entry := f.Logger.WithFields(logrus.Fields{
			"request_id": msg.RequestID,
			"kind":       msg.Kind,
			"channel":    s.Name(),
		})
		var se *StatusError
		if errors.As(err, &se) {
			entry = entry.WithFields(logrus.Fields{"status": se.StatusCode, "body": se.Body})
		}
		entry.WithError(err).Warn("lead delivery channel failed")
	}
	return models.ChannelOutcome{Configured: true, Error: err.Error()}
}
