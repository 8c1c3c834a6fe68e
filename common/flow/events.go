package flow

import (
	"context"
	"errors"
	"fmt"
)

// Common errors for dispatch
var (
	ErrNodeNotFound   = errors.New("node type not registered")
	ErrInvalidMessage = errors.New("invalid message")
)

// Output is how a node hands results back to the runtime.
//
// A node that succeeds calls Send exactly once. A node that hits a
// recoverable problem calls Error instead and returns nil; the message is
// dropped. Anything returned from Execute is treated as fatal for that
// input.
type Output interface {
	// Send emits msg downstream.
	Send(msg *Message) error

	// Error reports err through the runtime's error channel.
	// It never fails and never emits msg.
	Error(err error, msg *Message)
}

// Handler processes one input message.
type Handler interface {
	Execute(ctx context.Context, msg *Message, out Output) error
}

// HandlerFunc is a function adapter for Handler interface.
type HandlerFunc func(ctx context.Context, msg *Message, out Output) error

func (f HandlerFunc) Execute(ctx context.Context, msg *Message, out Output) error {
	return f(ctx, msg, out)
}

// FatalError wraps an error returned by a node's Execute.
type FatalError struct {
	Node string
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("node %s: %v", e.Node, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err came out of a node's Execute.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
