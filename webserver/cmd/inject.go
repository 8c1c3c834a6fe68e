package cmd

import (
	"context"
	"io"

	"github.com/mordilloSan/go-logger/logger"

	"github.com/mordilloSan/hostnodes/common/flow"
)

// Inject runs one registered node against a fresh message and writes every
// emitted message to w as a JSON line. Reported errors are logged. A fatal
// node error is returned.
func Inject(ctx context.Context, nodeType, topic string, w io.Writer) error {
	out := &flow.Collector{}
	dispatchErr := flow.Dispatch(ctx, nodeType, flow.NewMessage(topic), out)

	for _, err := range out.Reported() {
		logger.Warnf("[%s] %v", nodeType, err)
	}
	for _, msg := range out.Sent() {
		if err := flow.WriteMessage(w, msg); err != nil {
			return err
		}
	}
	return dispatchErr
}
