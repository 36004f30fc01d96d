package metrics

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"corysite/internal/logger"
	"corysite/internal/models"
)

var (
	ROICalculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cory_roi_calculations_total",
			Help: "ROI projections computed, by entry point",
		},
		[]string{"surface"},
	)

	LeadsCaptured = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cory_leads_captured_total",
			Help: "Leads accepted by the capture forms, by source",
		},
		[]string{"source"},
	)

	LeadForwards = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cory_lead_forwards_total",
			Help: "CRM webhook deliveries by outcome",
		},
		[]string{"outcome"},
	)

	MarkdownRenders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cory_markdown_renders_total",
			Help: "Resource body renders by cache outcome",
		},
		[]string{"cache"},
	)
)

var (
	contentViewsDesc = prometheus.NewDesc(
		"cory_content_views_total",
		"Total resource page views",
		[]string{"slug", "type"},
		nil,
	)
	leadsStoredDesc = prometheus.NewDesc(
		"cory_leads_stored",
		"Leads currently stored, by source",
		[]string{"source"},
		nil,
	)
)

// Source is the read side the collector scrapes.
type Source interface {
	GetContentViewCounts(ctx context.Context) ([]models.ContentViewCount, error)
	CountLeadsBySource(ctx context.Context) (map[string]int64, error)
}

// StoreCollector is a custom Prometheus collector that reads view and lead
// totals from the database on each scrape.
type StoreCollector struct {
	src Source
	log logger.Logger
}

// NewStoreCollector creates a collector over src.
func NewStoreCollector(src Source, log logger.Logger) *StoreCollector {
	return &StoreCollector{src: src, log: log}
}

// Describe sends the metric descriptors to the channel.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- contentViewsDesc
	ch <- leadsStoredDesc
}

// Collect queries the store and emits the totals.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	ctx := context.Background()

	views, err := c.src.GetContentViewCounts(ctx)
	if err != nil {
		c.log.WithError(err).Error("failed to collect content view metrics", nil)
	}
	for _, v := range views {
		ch <- prometheus.MustNewConstMetric(
			contentViewsDesc,
			prometheus.CounterValue,
			float64(v.Count),
			v.Slug,
			v.Type,
		)
	}

	leads, err := c.src.CountLeadsBySource(ctx)
	if err != nil {
		c.log.WithError(err).Error("failed to collect lead metrics", nil)
	}
	for source, n := range leads {
		ch <- prometheus.MustNewConstMetric(
			leadsStoredDesc,
			prometheus.GaugeValue,
			float64(n),
			source,
		)
	}
}

// ViewWriter persists a page view.
type ViewWriter interface {
	IncrementViewCount(ctx context.Context, slug string) error
}

// Recorder provides async view recording.
type Recorder struct {
	w   ViewWriter
	log logger.Logger
	wg  sync.WaitGroup
}

var (
	recorder     *Recorder
	recorderOnce sync.Once
)

// Init registers the store collector and initializes the recorder.
// Must be called once at startup.
func Init(store interface {
	Source
	ViewWriter
}, log logger.Logger) {
	recorderOnce.Do(func() {
		recorder = &Recorder{w: store, log: log}
		prometheus.MustRegister(NewStoreCollector(store, log))
	})
}

// NewRecorder creates a standalone recorder, independent of Init.
func NewRecorder(w ViewWriter, log logger.Logger) *Recorder {
	return &Recorder{w: w, log: log}
}

// Record asynchronously records a view of slug.
func (r *Recorder) Record(slug string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.w.IncrementViewCount(context.Background(), slug); err != nil {
			r.log.WithError(err).Error("failed to record content view", logger.Fields{"slug": slug})
		}
	}()
}

// Wait blocks until pending recordings finish.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

// RecordContentView asynchronously records a resource view via the Init recorder.
func RecordContentView(slug string) {
	if recorder == nil {
		return
	}
	recorder.Record(slug)
}

// Flush waits for views recorded through RecordContentView.
func Flush() {
	if recorder != nil {
		recorder.Wait()
	}
}
