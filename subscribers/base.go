package subscribers

import (
	"context"
	"sync"
	"time"

	"code.tierpay.io/referral/core/events"
)

// Base holds what every subscriber needs to be registered on the broker,
// the concrete subscriber implements Push and Types.
type Base struct {
	ctx     context.Context
	cfunc   context.CancelFunc
	mu      sync.Mutex
	halt    sync.Once
	sCh     chan struct{}
	ch      chan []events.Event
	ack     bool
	running bool
	id      int
}

func NewBase(ctx context.Context, buf int, ack bool) *Base {
	ctx, cfunc := context.WithCancel(ctx)
	b := &Base{
		ctx:     ctx,
		cfunc:   cfunc,
		sCh:     make(chan struct{}),
		ch:      make(chan []events.Event, buf),
		ack:     ack,
		running: !ack, // assume the implementation will start a routine asap
	}
	if b.ack {
		go b.cleanup()
	}
	return b
}

func (b *Base) cleanup() {
	<-b.ctx.Done()
	b.Halt()
}

// Ack returns whether or not this is a synchronous/async subscriber.
func (b *Base) Ack() bool {
	return b.ack
}

// Pause the current subscriber will not receive events from the channel.
func (b *Base) Pause() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		b.running = false
		close(b.sCh)
	}
}

// Resume unpauses the subscriber.
func (b *Base) Resume() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		b.sCh = make(chan struct{})
		b.running = true
	}
}

// C returns the event channel for optional subscribers.
func (b *Base) C() chan<- []events.Event {
	return b.ch
}

// Recv is the read side of C, used by the optional subscriber loop.
func (b *Base) Recv() <-chan []events.Event {
	return b.ch
}

// Closed indicates to the broker that the subscriber is closed for business.
func (b *Base) Closed() <-chan struct{} {
	return b.ctx.Done()
}

// Skip lets the broker know that the subscriber is not receiving events.
func (b *Base) Skip() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sCh
}

// Halt is called on shutdown, this closes the open channels.
func (b *Base) Halt() {
	b.halt.Do(func() {
		b.cfunc()
		b.Pause()
		// allow attempted writes during shutdown, unless this is an acking sub
		if !b.ack {
			time.Sleep(20 * time.Millisecond)
		}
		close(b.ch)
	})
}

// SetID set the ID (exposed only to broker).
func (b *Base) SetID(id int) {
	b.id = id
}

func (b *Base) ID() int {
	return b.id
}
