// Package leads captures form submissions, stores them, and relays them to
// the sales inbox and the CRM webhook.
package leads

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"corysite/internal/logger"
	"corysite/internal/metrics"
	"corysite/internal/models"
	"corysite/internal/roi"
	"corysite/internal/validation"
)

// EventLeadCaptured is the webhook event name for new leads.
const EventLeadCaptured = "lead.captured"

// ErrInvalidLead wraps field validation failures from Capture.
var ErrInvalidLead = errors.New("invalid lead")

// Poster delivers a JSON payload. *webhook.Client satisfies it.
type Poster interface {
	Post(ctx context.Context, url string, payload any) ([]byte, error)
}

// Notifier is told about every captured lead. *email.Notifier satisfies it.
type Notifier interface {
	NotifyLeadCaptured(lead *models.Lead)
}

// Event is the CRM webhook body.
type Event struct {
	Event      string       `json:"event"`
	Lead       models.Lead  `json:"lead"`
	Projection *roi.Results `json:"projection,omitempty"`
	SentAt     time.Time    `json:"sent_at"`
}

// Service runs the capture pipeline.
type Service struct {
	store      Store
	notifier   Notifier
	poster     Poster
	webhookURL string
	timeout    time.Duration
	log        logger.Logger
	now        func() time.Time

	wg sync.WaitGroup
}

// Options configures the optional collaborators of a Service.
type Options struct {
	Notifier   Notifier
	Poster     Poster
	WebhookURL string
	Timeout    time.Duration
}

// NewService creates a capture service over store.
func NewService(store Store, log logger.Logger, opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Service{
		store:      store,
		notifier:   opts.Notifier,
		poster:     opts.Poster,
		webhookURL: opts.WebhookURL,
		timeout:    opts.Timeout,
		log:        log,
		now:        time.Now,
	}
}

// Capture validates and stores a submission, then notifies and forwards it
// in the background. A forwarding failure leaves the lead for the retry job.
func (s *Service) Capture(ctx context.Context, lead *models.Lead) error {
	lead.Normalize()
	lead.PageURL = validation.NormalizePageURL(lead.PageURL)
	lead.ForwardedAt = nil

	if err := lead.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLead, err)
	}
	if lead.Source == models.SourceROIReport {
		if _, err := roi.RequestFromSnapshot(lead.ROI).Inputs(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidLead, err)
		}
	}

	if err := s.store.Append(ctx, lead); err != nil {
		return fmt.Errorf("failed to store lead: %w", err)
	}

	metrics.LeadsCaptured.WithLabelValues(lead.Source).Inc()
	s.log.Info("lead captured", logger.Fields{"lead_id": lead.ID.String(), "source": lead.Source})

	if s.notifier != nil {
		s.notifier.NotifyLeadCaptured(lead)
	}

	if s.forwarding() {
		captured := *lead
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()
			if err := s.Forward(ctx, &captured); err != nil {
				s.log.WithError(err).Warn("lead forward failed, will retry", logger.Fields{"lead_id": captured.ID.String()})
			}
		}()
	}

	return nil
}

// Recent returns the latest leads for the admin panel.
func (s *Service) Recent(ctx context.Context, limit int) ([]models.Lead, error) {
	return s.store.List(ctx, limit)
}

func (s *Service) forwarding() bool {
	return s.poster != nil && s.webhookURL != ""
}

// Forward posts one lead to the CRM webhook and marks it delivered.
func (s *Service) Forward(ctx context.Context, lead *models.Lead) error {
	if !s.forwarding() {
		return nil
	}

	event := Event{Event: EventLeadCaptured, Lead: *lead, SentAt: time.Now().UTC()}
	if in, err := roi.RequestFromSnapshot(lead.ROI).Inputs(); err == nil && len(lead.ROI) > 0 {
		projection := roi.Calculate(in)
		event.Projection = &projection
	}

	if _, err := s.poster.Post(ctx, s.webhookURL, event); err != nil {
		metrics.LeadForwards.WithLabelValues("failure").Inc()
		return err
	}
	metrics.LeadForwards.WithLabelValues("success").Inc()

	if err := s.store.MarkForwarded(ctx, lead.ID); err != nil {
		return fmt.Errorf("failed to mark lead forwarded: %w", err)
	}
	return nil
}

// ForwardPending retries up to batch undelivered leads, oldest first.
// Leads captured less than one forward timeout ago are skipped because the
// capture-time forward may still be in flight. Returns how many were delivered.
func (s *Service) ForwardPending(ctx context.Context, batch int) (int, error) {
	if !s.forwarding() {
		return 0, nil
	}

	pending, err := s.store.ListUnforwarded(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("failed to list unforwarded leads: %w", err)
	}

	settled := s.now().Add(-s.timeout)
	delivered := 0
	for i := range pending {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		if pending[i].CreatedAt.After(settled) {
			continue
		}
		if err := s.Forward(ctx, &pending[i]); err != nil {
			s.log.WithError(err).Warn("lead retry failed", logger.Fields{"lead_id": pending[i].ID.String()})
			continue
		}
		delivered++
	}
	return delivered, nil
}

// Wait blocks until background forwards finish.
func (s *Service) Wait() {
	s.wg.Wait()
}
