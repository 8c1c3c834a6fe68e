package flow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Dispatch runs the node registered under nodeType against msg.
//
// A nil msg is replaced by an empty one and a missing id is filled in.
// An error returned by the node, or a panic inside it, comes back as
// *FatalError. Errors the node reports through out.Error do not.
func Dispatch(ctx context.Context, nodeType string, msg *Message, out Output) (err error) {
	h, ok := Get(nodeType)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeType)
	}

	if msg == nil {
		msg = NewMessage("")
	} else if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	defer func() {
		if r := recover(); r != nil {
			err = &FatalError{Node: nodeType, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if execErr := h.Execute(ctx, msg, out); execErr != nil {
		return &FatalError{Node: nodeType, Err: execErr}
	}
	return nil
}
