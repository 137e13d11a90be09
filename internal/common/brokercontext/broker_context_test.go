package brokercontext

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestBackground(t *testing.T) {
	ctx := Background()
	assert.Equal(t, context.Background(), ctx.Context)
	assert.Equal(t, logrus.StandardLogger(), ctx.Log.Logger)
}

func TestWithLogField(t *testing.T) {
	parent := New(context.Background(), logrus.WithField("operation", "resolve"))
	ctx := WithLogField(parent, "job", "job-1")
	assert.Equal(t, logrus.Fields{"operation": "resolve", "job": "job-1"}, ctx.Log.Data)
	assert.Equal(t, logrus.Fields{"operation": "resolve"}, parent.Log.Data)
}

func TestWithInterrupt(t *testing.T) {
	parent := WithLogField(Background(), "operation", "migrate")
	ctx, stop := WithInterrupt(parent)
	assert.NoError(t, ctx.Err())
	assert.Equal(t, parent.Log, ctx.Log)

	stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled")
	}
	assert.Equal(t, context.Canceled, ctx.Err())
}
