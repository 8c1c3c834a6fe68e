package flow

import "sync"

// Collector is an Output that keeps everything a node emits or reports.
type Collector struct {
	mu       sync.Mutex
	sent     []*Message
	reported []error
}

func (c *Collector) Send(msg *Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

func (c *Collector) Error(err error, _ *Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reported = append(c.reported, err)
}

// Sent returns the emitted messages in order.
func (c *Collector) Sent() []*Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Message, len(c.sent))
	copy(out, c.sent)
	return out
}

// Reported returns the errors passed to Error in order.
func (c *Collector) Reported() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]error, len(c.reported))
	copy(out, c.reported)
	return out
}
