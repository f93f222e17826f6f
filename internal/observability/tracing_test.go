package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "inkwell-test"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	ctx, span := StartSpan(context.Background(), "feed", "Index")
	assert.NotNil(t, ctx)
	EndSpan(span, errors.New("boom"))
}

func TestFollowChangesCounter(t *testing.T) {
	before := testutil.ToFloat64(FollowChanges.WithLabelValues("follow"))
	FollowChanges.WithLabelValues("follow").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(FollowChanges.WithLabelValues("follow")))
}
