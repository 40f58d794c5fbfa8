package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordBatch(t *testing.T) {
	before := testutil.ToFloat64(BatchItemsTotal.WithLabelValues("test", "updated"))
	RecordBatch("test", 45, 5)
	assert.Equal(t, before+45, testutil.ToFloat64(BatchItemsTotal.WithLabelValues("test", "updated")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(BatchItemsTotal.WithLabelValues("test", "error")), 5.0)
}

func TestRecordJob(t *testing.T) {
	before := testutil.ToFloat64(JobRunsTotal.WithLabelValues("job_x", OutcomeSkipped))
	RecordJob("job_x", OutcomeSkipped, time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(JobRunsTotal.WithLabelValues("job_x", OutcomeSkipped)))
}

func TestRecordVerdict(t *testing.T) {
	before := testutil.ToFloat64(ModerationDegradedTotal)
	RecordVerdict("post", "pending", true, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(ModerationDegradedTotal))
}
