package main

import (
	"context"
	"net/http"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/chazu/meshfill/pkg/fill"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	outcomeLabel = "outcome"
	shapeLabel   = "shape"

	outcomeComplete = "complete"
)

var (
	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "meshfill_info",
		Help:        "Meshfill information.",
		ConstLabels: prometheus.Labels{"version": version},
	})

	fillSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meshfill_sessions",
		Help: "The number of fill sessions by outcome.",
	}, []string{
		shapeLabel,
		outcomeLabel,
	})

	fillParticles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meshfill_particles",
		Help: "The number of particles accepted by completed sessions.",
	}, []string{
		shapeLabel,
	})

	fillCandidates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meshfill_candidates",
		Help: "The number of candidates tested by completed sessions.",
	}, []string{
		shapeLabel,
	})

	fillRayCasts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meshfill_ray_casts",
		Help: "The number of ray/triangle tests run by completed sessions.",
	}, []string{
		shapeLabel,
	})

	fillBatchSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "meshfill_batch_size",
		Help: "The number of candidates the next step will draw.",
	}, []string{
		shapeLabel,
	})

	fillStepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "meshfill_step_duration_seconds",
		Help:    "The duration of fill steps.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 8),
	}, []string{
		shapeLabel,
	})

	indexBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "meshfill_index_build_duration_seconds",
		Help: "The time spent extracting and indexing meshes.",
	}, []string{
		shapeLabel,
	})
)

func observeStep(shape string, r fill.Report) {
	fillBatchSize.WithLabelValues(shape).Set(float64(r.BatchSize))
	fillStepDuration.WithLabelValues(shape).Observe(r.Elapsed.Seconds())
}

func observeCompletion(shape string, c fill.Completion) {
	m := c.Metrics
	fillSessions.WithLabelValues(shape, outcomeComplete).Inc()
	fillParticles.WithLabelValues(shape).Add(float64(m.Accepted))
	fillCandidates.WithLabelValues(shape).Add(float64(m.Candidates))
	fillRayCasts.WithLabelValues(shape).Add(float64(m.RayCasts))
	indexBuildDuration.WithLabelValues(shape).Observe(m.IndexBuild.Seconds())
}

func observeFailure(shape string, err error) {
	outcome := errors.Type(err)
	if outcome == "" {
		outcome = "error"
	}
	fillSessions.WithLabelValues(shape, outcome).Inc()
}

// serveMetrics exposes the default registry on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string) {
	var mux http.ServeMux
	mux.Handle("/metrics", promhttp.Handler())
	s := &http.Server{Addr: addr, Handler: &mux}

	go func() {
		<-ctx.Done()
		if err := s.Shutdown(context.Background()); err != nil {
			logs.Warn(errors.New("shutting down the metrics server failed").
				WithTag("addr", s.Addr).
				Wrap(err))
		}
	}()

	go func() {
		logs.WithTag("addr", s.Addr).Info("starting metrics server")

		switch err := s.ListenAndServe(); err {
		case nil, http.ErrServerClosed, context.Canceled:
			logs.WithTag("addr", s.Addr).Info("stopping metrics server")

		default:
			logs.Warn(errors.New("metrics server stopped").
				WithTag("addr", s.Addr).
				Wrap(err))
		}
	}()
}
