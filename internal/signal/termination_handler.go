package signal

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/logicossoftware/go-docxedit/internal/logging"
)

type TerminationHandler struct {
	ctx      context.Context
	cancelFn func()
	logger   logging.Logger
	stopCh   chan os.Signal
}

func NewTerminationHandler(logger logging.Logger) *TerminationHandler {
	ctx, cancelFn := context.WithCancel(context.Background())

	return &TerminationHandler{
		ctx:      ctx,
		cancelFn: cancelFn,
		logger:   logger,
		stopCh:   make(chan os.Signal, 1),
	}
}

// Context is cancelled once SIGINT or SIGTERM arrives.
func (th *TerminationHandler) Context() context.Context {
	return th.ctx
}

func (th *TerminationHandler) HandleSignals() {
	signal.Notify(th.stopCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(th.stopCh)

	select {
	case sig := <-th.stopCh:
		th.logger.
			WithField("signal", sig).
			Warning("Received exit signal; quitting")

		th.cancelFn()
	case <-th.ctx.Done():
	}
}

// Stop releases the handler without waiting for a signal.
func (th *TerminationHandler) Stop() {
	th.cancelFn()
}
