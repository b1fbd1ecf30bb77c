package metrics_test

import (
	"errors"
	"testing"
	"time"

	"orderflow/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewConsumerMetrics(reg)

	m.Observe("bid.won", metrics.OutcomeAcked, 10*time.Millisecond)
	m.Observe("bid.won", metrics.OutcomeAcked, 10*time.Millisecond)
	m.Observe("", metrics.OutcomeDropped, time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	assert.InDelta(t, 2, counterValue(t, mfs, "consumer_messages_total", map[string]string{
		"routing_key": "bid.won", "outcome": metrics.OutcomeAcked,
	}), 0)
	assert.InDelta(t, 1, counterValue(t, mfs, "consumer_messages_total", map[string]string{
		"routing_key": "unknown", "outcome": metrics.OutcomeDropped,
	}), 0)
}

func TestJobMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewJobMetrics(reg)

	m.Observe("purge", time.Second, nil)
	m.Observe("purge", time.Second, errors.New("db down"))

	count, err := testutil.GatherAndCount(reg, "job_success_total", "job_failure_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetrics_NilSafe(t *testing.T) {
	var c *metrics.ConsumerMetrics
	var j *metrics.JobMetrics

	assert.NotPanics(t, func() {
		c.Observe("bid.won", metrics.OutcomeAcked, time.Second)
		j.Observe("purge", time.Second, nil)
		metrics.NewConsumerMetrics(nil).Observe("x", metrics.OutcomeRequeued, 0)
	})
}

func counterValue(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matches(metric.GetLabel(), labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return 0
}

func matches(pairs []*dto.LabelPair, want map[string]string) bool {
	found := 0
	for _, p := range pairs {
		if v, ok := want[p.GetName()]; ok && v == p.GetValue() {
			found++
		}
	}
	return found == len(want)
}
