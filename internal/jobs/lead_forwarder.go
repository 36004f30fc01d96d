package jobs

import (
	"context"
	"time"

	"corysite/internal/logger"
)

// DefaultBatchSize is how many pending leads one pass retries.
const DefaultBatchSize = 50

// PendingForwarder retries undelivered leads. *leads.Service satisfies it.
type PendingForwarder interface {
	ForwardPending(ctx context.Context, batch int) (int, error)
}

// LeadForwarder periodically pushes leads the CRM webhook has not yet accepted.
type LeadForwarder struct {
	fwd      PendingForwarder
	interval time.Duration
	batch    int
	log      logger.Logger
}

// NewLeadForwarder creates a new forwarder job.
func NewLeadForwarder(fwd PendingForwarder, interval time.Duration, log logger.Logger) *LeadForwarder {
	return &LeadForwarder{
		fwd:      fwd,
		interval: interval,
		batch:    DefaultBatchSize,
		log:      log,
	}
}

// Start runs the retry loop until ctx is cancelled.
func (f *LeadForwarder) Start(ctx context.Context) {
	f.log.Info("lead forwarder started", logger.Fields{"interval": f.interval.String(), "batch": f.batch})

	// Run immediately on start
	f.RunOnce(ctx)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.log.Info("lead forwarder stopped", nil)
			return
		case <-ticker.C:
			f.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single retry pass.
func (f *LeadForwarder) RunOnce(ctx context.Context) {
	delivered, err := f.fwd.ForwardPending(ctx, f.batch)
	if err != nil {
		if ctx.Err() == nil {
			f.log.WithError(err).Error("lead forwarder pass failed", nil)
		}
		return
	}
	if delivered > 0 {
		f.log.Info("lead forwarder delivered pending leads", logger.Fields{"count": delivered})
	}
}
