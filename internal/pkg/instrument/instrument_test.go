package instrument

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Disabled(t *testing.T) {
	ins, err := New(context.Background(), &Config{ServiceName: "yogapass", LogLevel: "error"})
	require.NoError(t, err)

	_, span := ins.Tracer("auth.usecase").Start(context.Background(), "Issue")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	c, err := ins.Meter("sms.ncp").Int64Counter("sms_send_total")
	require.NoError(t, err)
	c.Add(context.Background(), 1)

	assert.NoError(t, ins.Shutdown(context.Background()))
}

func TestNew_NilConfig(t *testing.T) {
	ins, err := New(context.Background(), nil)
	require.NoError(t, err)
	assert.NoError(t, ins.Shutdown(context.Background()))
}
