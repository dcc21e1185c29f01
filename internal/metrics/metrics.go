// Package metrics holds the Prometheus collectors for the vote, follow,
// score and notification pipelines. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "debate"

type Metrics struct {
	VotesCast          *prometheus.CounterVec
	VoteDuration       prometheus.Histogram
	FollowToggles      *prometheus.CounterVec
	ScoreRecomputes    *prometheus.CounterVec
	Notifications      *prometheus.CounterVec
	NotificationQueued prometheus.Gauge
}

// New creates and registers all collectors on the given registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		VotesCast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_cast_total",
			Help:      "Votes applied, by target type and ledger transition.",
		}, []string{"target", "transition"}),
		VoteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "vote_duration_seconds",
			Help:      "Time to apply a vote including the claim score cascade.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		FollowToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "follow_toggles_total",
			Help:      "Follow toggles, by target type and resulting state.",
		}, []string{"target", "state"}),
		ScoreRecomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claim_score_recomputes_total",
			Help:      "Claim total score recomputations, by result.",
		}, []string{"result"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification dispatcher events, by result.",
		}, []string{"result"}),
		NotificationQueued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "notification_queue_depth",
			Help:      "Notifications waiting in the dispatch queue.",
		}),
	}

	reg.MustRegister(m.VotesCast, m.VoteDuration, m.FollowToggles, m.ScoreRecomputes, m.Notifications, m.NotificationQueued)
	return m
}

func (m *Metrics) ObserveVote(target, transition string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.VotesCast.WithLabelValues(target, transition).Inc()
	m.VoteDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveFollow(target string, following bool) {
	if m == nil {
		return
	}
	state := "unfollowed"
	if following {
		state = "followed"
	}
	m.FollowToggles.WithLabelValues(target, state).Inc()
}

func (m *Metrics) ObserveRecompute(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ScoreRecomputes.WithLabelValues(result).Inc()
}

// ObserveNotification records one of: enqueued, dropped, delivered, failed.
func (m *Metrics) ObserveNotification(result string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(result).Inc()
}

func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.NotificationQueued.Set(float64(n))
}
