// Package service is the entry point to the broker core. Each exported method is one logical operation and runs
// inside a single store transaction, so it either takes effect completely or not at all.
package service

import (
	"k8s.io/utils/clock"

	"github.com/G-Research/genie/internal/broker/configuration"
	"github.com/G-Research/genie/internal/broker/jobstate"
	"github.com/G-Research/genie/internal/broker/metrics"
	"github.com/G-Research/genie/internal/broker/repository"
	"github.com/G-Research/genie/internal/common/brokercontext"
	"github.com/G-Research/genie/internal/common/genieerrors"
	"github.com/G-Research/genie/internal/common/logging"
)

type Service struct {
	store   repository.Store
	clock   clock.PassiveClock
	machine *jobstate.Machine
	metrics *metrics.Metrics
}

func New(store repository.Store, config configuration.JobsConfig, clock clock.PassiveClock, metrics *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		clock:   clock,
		machine: jobstate.NewMachine(clock, !config.LegacyTransitions),
		metrics: metrics,
	}
}

type txnFunc func(ctx *brokercontext.Context, txn repository.Txn) error

func (s *Service) view(ctx *brokercontext.Context, operation string, fn txnFunc) error {
	ctx = brokercontext.WithLogField(ctx, "operation", operation)
	err := s.store.View(ctx, func(txn repository.Txn) error {
		return fn(ctx, txn)
	})
	return s.done(ctx, err)
}

func (s *Service) update(ctx *brokercontext.Context, operation string, fn txnFunc) error {
	ctx = brokercontext.WithLogField(ctx, "operation", operation)
	err := s.store.Update(ctx, func(txn repository.Txn) error {
		return fn(ctx, txn)
	})
	return s.done(ctx, err)
}

// done logs and counts a failed operation. Errors that callers are expected to handle are logged at debug level.
func (s *Service) done(ctx *brokercontext.Context, err error) error {
	if err == nil {
		return nil
	}
	s.metrics.ReportError(err)
	kind := genieerrors.KindFromError(err)
	logger := logging.WithStacktrace(ctx.Log, err).WithField("category", kind.String())
	if kind == genieerrors.KindUnknown {
		logger.Error("operation failed")
	} else {
		logger.Debug("operation rejected")
	}
	return err
}
