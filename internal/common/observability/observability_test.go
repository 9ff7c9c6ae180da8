package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestNoopObservability(t *testing.T) {
	o := NewNoop()
	ctx, span := o.StartSpan(context.Background(), "recommend", attribute.String("stage", "analyze"))
	defer span.End()

	assert.NotNil(t, ctx)
	assert.NotPanics(t, func() {
		o.RecordPipeline(ctx, 120*time.Millisecond, "parsed")
	})
	assert.NoError(t, o.Shutdown(context.Background()))
}
