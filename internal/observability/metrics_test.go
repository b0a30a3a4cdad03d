package observability

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestRecordExerciseLoggedMovesWatermark(t *testing.T) {
	before := testutil.ToFloat64(exercisesLogged)
	ts := time.Date(2024, time.February, 2, 12, 0, 0, 0, time.UTC)

	RecordExerciseLogged(ts)

	require.Equal(t, before+1, testutil.ToFloat64(exercisesLogged))
	require.Equal(t, float64(ts.Unix()), testutil.ToFloat64(exercisePersistGauge))
}

func TestRecordExerciseLoggedIgnoresZeroTimestamp(t *testing.T) {
	ts := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	RecordExerciseLogged(ts)
	RecordExerciseLogged(time.Time{})

	require.Equal(t, float64(ts.Unix()), testutil.ToFloat64(exercisePersistGauge))
}

func TestRecordPublishFailureIsLabeled(t *testing.T) {
	before := testutil.ToFloat64(publishFailures.WithLabelValues("user.created"))
	RecordPublishFailure("user.created")
	require.Equal(t, before+1, testutil.ToFloat64(publishFailures.WithLabelValues("user.created")))
}

func TestObserveRequestRecordsCounterAndHistogram(t *testing.T) {
	ObserveRequest("GET /api/users", http.MethodGet, http.StatusOK, 15*time.Millisecond)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	histogram := findMetric(families, "exercise_tracker_http_request_duration_seconds", map[string]string{
		"route":  "GET /api/users",
		"method": http.MethodGet,
	})
	require.NotNil(t, histogram)
	require.GreaterOrEqual(t, histogram.GetHistogram().GetSampleCount(), uint64(1))

	counter := findMetric(families, "exercise_tracker_http_requests_total", map[string]string{
		"route":  "GET /api/users",
		"method": http.MethodGet,
		"code":   "200",
	})
	require.NotNil(t, counter)
	require.GreaterOrEqual(t, counter.GetCounter().GetValue(), 1.0)
}

func findMetric(families []*dto.MetricFamily, name string, labels map[string]string) *dto.Metric {
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if labelsMatch(metric.GetLabel(), labels) {
				return metric
			}
		}
	}
	return nil
}

func labelsMatch(pairs []*dto.LabelPair, want map[string]string) bool {
	if len(pairs) != len(want) {
		return false
	}
	for _, pair := range pairs {
		if want[pair.GetName()] != pair.GetValue() {
			return false
		}
	}
	return true
}
