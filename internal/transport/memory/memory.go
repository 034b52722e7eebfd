// Package memory provides an in-process raw channel for connections.
//
// Inbound messages are queued with Push and delivered by Receive; outbound
// messages passed to Send are recorded and can be observed with Sent or
// drained from Outbound.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/danmuck/edgeconn/internal/protocol"
)

var ErrChannelClosed = errors.New("memory: channel closed")

// Channel is a buffered, context-aware duplex message channel.
type Channel struct {
	inbound  chan protocol.Message
	outbound chan protocol.Message
	closeCh  chan struct{}

	mu       sync.Mutex
	sent     []protocol.Message
	receives int
	closed   bool
}

// New returns a channel that can buffer size messages in each direction.
func New(size int) *Channel {
	if size <= 0 {
		size = 16
	}
	return &Channel{
		inbound:  make(chan protocol.Message, size),
		outbound: make(chan protocol.Message, size),
		closeCh:  make(chan struct{}),
	}
}

// Push queues messages for Receive. It blocks when the buffer is full.
func (c *Channel) Push(msgs ...protocol.Message) {
	for _, m := range msgs {
		select {
		case c.inbound <- m:
		case <-c.closeCh:
			return
		}
	}
}

// Receive waits for the next pushed message.
func (c *Channel) Receive(ctx context.Context) (protocol.Message, error) {
	c.mu.Lock()
	c.receives++
	c.mu.Unlock()

	select {
	case m := <-c.inbound:
		return m, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closeCh:
		return nil, ErrChannelClosed
	}
}

// Send records msg and offers it on Outbound without blocking.
func (c *Channel) Send(ctx context.Context, msg protocol.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrChannelClosed
	}
	c.sent = append(c.sent, msg)
	c.mu.Unlock()

	select {
	case c.outbound <- msg:
	default:
	}
	return nil
}

// Outbound delivers sent messages while its buffer has room.
func (c *Channel) Outbound() <-chan protocol.Message {
	return c.outbound
}

// Sent returns a copy of every message passed to Send so far.
func (c *Channel) Sent() []protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]protocol.Message, len(c.sent))
	copy(out, c.sent)
	return out
}

// Receives counts calls made to Receive.
func (c *Channel) Receives() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.receives
}

func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.closeCh)
}
