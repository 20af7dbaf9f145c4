package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "foodcrimes-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	span, ctx := NewSpan(context.Background(), "unit", attribute.String("k", "v"))
	assert.NotNil(t, ctx)
	span.AddAttributes(attribute.Int("n", 1))
	span.SetError(errors.New("boom"))
	span.End()
}

func TestRecordModeration(t *testing.T) {
	RecordModeration("approve", nil)
	RecordModeration("approve", errors.New("x"))
	TrackStage("compose")()
	TrackQuery("select", "foods")()
}
