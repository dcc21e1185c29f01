package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveVote(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveVote("evidence", "create", 5*time.Millisecond)
	m.ObserveVote("evidence", "create", 5*time.Millisecond)
	m.ObserveVote("reply", "delete", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.VotesCast.WithLabelValues("evidence", "create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VotesCast.WithLabelValues("reply", "delete")))
}

func TestObserveRecompute(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRecompute(nil)
	m.ObserveRecompute(errors.New("db down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScoreRecomputes.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScoreRecomputes.WithLabelValues("error")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveVote("claim", "create", time.Millisecond)
	m.ObserveFollow("user", true)
	m.ObserveRecompute(nil)
	m.ObserveNotification("dropped")
	m.SetQueueDepth(3)
}
