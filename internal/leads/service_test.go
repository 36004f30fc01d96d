package leads

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corysite/internal/logger"
	"corysite/internal/models"
	"corysite/internal/roi"
)

type fakePoster struct {
	mu     sync.Mutex
	fail   bool
	events []Event
}

func (p *fakePoster) Post(ctx context.Context, url string, payload any) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return nil, errors.New("crm unavailable")
	}
	p.events = append(p.events, payload.(Event))
	return []byte(`{}`), nil
}

func (p *fakePoster) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type fakeNotifier struct {
	leads []*models.Lead
}

func (n *fakeNotifier) NotifyLeadCaptured(lead *models.Lead) {
	n.leads = append(n.leads, lead)
}

func newTestService(t *testing.T, store Store, poster Poster, notifier Notifier) *Service {
	t.Helper()
	return NewService(store, logger.NewNoOpLogger(), Options{
		Notifier:   notifier,
		Poster:     poster,
		WebhookURL: "https://crm.example.com/hooks/leads",
	})
}

func TestCapture_StoresNotifiesAndForwards(t *testing.T) {
	store := NewMemoryStore()
	poster := &fakePoster{}
	notifier := &fakeNotifier{}
	svc := newTestService(t, store, poster, notifier)

	lead := &models.Lead{
		Source:  " Demo ",
		Name:    "Dana",
		Email:   "Dana@Riverside.EDU",
		PageURL: "/roi",
	}
	require.NoError(t, svc.Capture(context.Background(), lead))
	svc.Wait()

	assert.Equal(t, models.SourceDemo, lead.Source)
	assert.Equal(t, "dana@riverside.edu", lead.Email)
	assert.Len(t, notifier.leads, 1)
	require.Equal(t, 1, poster.count())
	assert.Equal(t, EventLeadCaptured, poster.events[0].Event)
	assert.Nil(t, poster.events[0].Projection)

	pending, err := store.ListUnforwarded(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCapture_ROIReportCarriesProjection(t *testing.T) {
	poster := &fakePoster{}
	svc := newTestService(t, NewMemoryStore(), poster, nil)

	lead := &models.Lead{
		Source: models.SourceROIReport,
		Name:   "Dana",
		Email:  "dana@riverside.edu",
		ROI:    roi.Default().Snapshot(),
	}
	require.NoError(t, svc.Capture(context.Background(), lead))
	svc.Wait()

	require.Equal(t, 1, poster.count())
	require.NotNil(t, poster.events[0].Projection)
	assert.Equal(t, 7_981_800.0, poster.events[0].Projection.NetBenefit)
}

func TestCapture_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		lead  models.Lead
		field string
	}{
		{"bad email", models.Lead{Source: models.SourceContact, Name: "Dana", Email: "nope"}, "email"},
		{"unknown source", models.Lead{Source: "fax", Name: "Dana", Email: "d@x.edu"}, "source"},
		{"missing name", models.Lead{Source: models.SourceDemo, Email: "d@x.edu"}, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			svc := newTestService(t, store, &fakePoster{}, nil)

			err := svc.Capture(context.Background(), &tt.lead)

			require.ErrorIs(t, err, ErrInvalidLead)
			fields, ok := models.FieldErrors(err)
			require.True(t, ok)
			assert.Contains(t, fields, tt.field)

			all, _ := store.List(context.Background(), 0)
			assert.Empty(t, all)
		})
	}
}

func TestCapture_ROIReportNeedsCompleteSnapshot(t *testing.T) {
	svc := newTestService(t, NewMemoryStore(), &fakePoster{}, nil)

	err := svc.Capture(context.Background(), &models.Lead{
		Source: models.SourceROIReport,
		Name:   "Dana",
		Email:  "dana@riverside.edu",
		ROI:    map[string]float64{"monthlyInquiries": 500},
	})

	require.ErrorIs(t, err, ErrInvalidLead)
	var inputErr *roi.InputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestCapture_DropsUnsafePageURL(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, logger.NewNoOpLogger(), Options{})

	lead := &models.Lead{Source: models.SourceNewsletter, Email: "n@x.edu", PageURL: "javascript:alert(1)"}
	require.NoError(t, svc.Capture(context.Background(), lead))

	assert.Empty(t, lead.PageURL)
}

func TestCapture_ForwardFailureLeavesLeadPending(t *testing.T) {
	store := NewMemoryStore()
	poster := &fakePoster{fail: true}
	svc := newTestService(t, store, poster, nil)

	require.NoError(t, svc.Capture(context.Background(), &models.Lead{Source: models.SourceDemo, Name: "A", Email: "a@x.edu"}))
	svc.Wait()

	pending, err := store.ListUnforwarded(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	poster.mu.Lock()
	poster.fail = false
	poster.mu.Unlock()
	svc.now = func() time.Time { return time.Now().Add(time.Minute) }

	delivered, err := svc.ForwardPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)

	pending, err = store.ListUnforwarded(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestForwardPending_SkipsLeadsStillInFlight(t *testing.T) {
	store := NewMemoryStore()
	poster := &fakePoster{fail: true}
	svc := newTestService(t, store, poster, nil)

	require.NoError(t, svc.Capture(context.Background(), &models.Lead{Source: models.SourceDemo, Name: "A", Email: "a@x.edu"}))
	svc.Wait()

	poster.mu.Lock()
	poster.fail = false
	poster.events = nil
	poster.mu.Unlock()

	delivered, err := svc.ForwardPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, delivered, "a lead younger than the forward timeout belongs to the capture forward")
	assert.Zero(t, poster.count())

	svc.now = func() time.Time { return time.Now().Add(11 * time.Second) }
	delivered, err = svc.ForwardPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
	assert.Equal(t, 1, poster.count())
}

func TestForwardPending_Disabled(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, logger.NewNoOpLogger(), Options{})

	require.NoError(t, svc.Capture(context.Background(), &models.Lead{Source: models.SourceDemo, Name: "A", Email: "a@x.edu"}))

	delivered, err := svc.ForwardPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, delivered)
}

func TestForwardPending_StopsOnCancel(t *testing.T) {
	store := NewMemoryStore()
	poster := &fakePoster{fail: true}
	svc := newTestService(t, store, poster, nil)

	for _, email := range []string{"a@x.edu", "b@x.edu"} {
		require.NoError(t, svc.Capture(context.Background(), &models.Lead{Source: models.SourceDemo, Name: "A", Email: email}))
	}
	svc.Wait()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	delivered, err := svc.ForwardPending(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, delivered)
}
