// Package brokercontext carries a logger alongside a context.Context, so that log fields added by one layer
// (the operation name, the resource id) show up in everything logged below it.
package brokercontext

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

type Context struct {
	context.Context
	Log *logrus.Entry
}

// Background is context.Background() with the standard logger.
func Background() *Context {
	return New(context.Background(), logrus.NewEntry(logrus.StandardLogger()))
}

func New(ctx context.Context, log *logrus.Entry) *Context {
	return &Context{
		Context: ctx,
		Log:     log,
	}
}

// WithInterrupt returns a copy of parent that is cancelled on SIGINT or SIGTERM, or when the returned function is called.
func WithInterrupt(parent *Context) (*Context, context.CancelFunc) {
	c, stop := signal.NotifyContext(parent.Context, os.Interrupt, syscall.SIGTERM)
	return New(c, parent.Log), stop
}

// WithLogField returns a copy of parent whose logger carries the extra field.
func WithLogField(parent *Context, key string, val interface{}) *Context {
	return New(parent.Context, parent.Log.WithField(key, val))
}
