package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bdeb.transit/board/internal/models"
	"bdeb.transit/board/internal/schedule"
)

type Collector struct {
	reg *prometheus.Registry

	FeedFetches       *prometheus.CounterVec   // agency, feed, result=ok|error
	FeedFetchDuration *prometheus.HistogramVec // agency, feed

	CycleDuration prometheus.Histogram
	Arrivals      *prometheus.GaugeVec // mode, source
	Alerts        prometheus.Gauge

	ScheduleTrips *prometheus.GaugeVec // agency
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		FeedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "board_feed_fetch_total",
			Help: "Real-time feed fetches by outcome.",
		}, []string{"agency", "feed", "result"}),
		FeedFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "board_feed_fetch_duration_seconds",
			Help:    "Duration of real-time feed fetches, retries included.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"agency", "feed"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "board_cycle_duration_seconds",
			Help:    "Duration of a full fetch, reconcile and assemble cycle.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		Arrivals: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "board_arrivals",
			Help: "Arrival records in the last board by mode and source.",
		}, []string{"mode", "source"}),
		Alerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "board_alerts",
			Help: "Alerts in the last board.",
		}),
		ScheduleTrips: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "board_schedule_trips",
			Help: "Trips loaded in the static schedule index.",
		}, []string{"agency"}),
	}

	reg.MustRegister(
		c.FeedFetches, c.FeedFetchDuration,
		c.CycleDuration, c.Arrivals, c.Alerts,
		c.ScheduleTrips,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// ObserveFetch records one feed fetch.
func (c *Collector) ObserveFetch(agency, feed string, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.FeedFetches.WithLabelValues(agency, feed, result).Inc()
	c.FeedFetchDuration.WithLabelValues(agency, feed).Observe(elapsed.Seconds())
}

// ObserveBoard records the shape of an assembled board.
func (c *Collector) ObserveBoard(b models.Board, elapsed time.Duration) {
	c.CycleDuration.Observe(elapsed.Seconds())
	c.Arrivals.Reset()
	for mode, records := range map[string][]models.ArrivalRecord{"bus": b.Buses, "rail": b.NextTrains} {
		for _, source := range []string{models.SourceRealtime, models.SourceSchedule} {
			c.Arrivals.WithLabelValues(mode, source).Set(0)
		}
		for _, r := range records {
			c.Arrivals.WithLabelValues(mode, r.Source).Inc()
		}
	}
	c.Alerts.Set(float64(len(b.Alerts)))
}

// ObserveSchedule records the size of a freshly loaded schedule index.
func (c *Collector) ObserveSchedule(agency string, stats schedule.Stats) {
	c.ScheduleTrips.WithLabelValues(agency).Set(float64(stats.Trips))
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }
