package broker

import (
	"context"
	"sync"
	"time"

	"code.tierpay.io/referral/core/events"
	"code.tierpay.io/referral/logging"
	"code.tierpay.io/referral/metrics"
)

// Subscriber interface allows pushing values to subscribers, can be set to
// a Skip state (temporarily not receiving any events), or closed. Otherwise events are pushed.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks code.tierpay.io/referral/broker Subscriber,Interface
type Subscriber interface {
	Push(val ...events.Event)
	Skip() <-chan struct{}
	Closed() <-chan struct{}
	C() chan<- []events.Event
	Types() []events.Type
	SetID(id int)
	ID() int
	Ack() bool
}

// Interface is what the engines depend on, it is declared here so a
// single mock can stand in for the broker everywhere.
type Interface interface {
	Send(event events.Event)
	SendBatch(evts []events.Event)
	Subscribe(s Subscriber) int
	SubscribeBatch(subs ...Subscriber)
	Unsubscribe(k int)
}

type subscription struct {
	Subscriber
	required bool
}

// Broker fans events out to subscribers. Sending never blocks the caller:
// each event type has its own buffered channel consumed by a dedicated
// routine, events that don't fit are dropped.
type Broker struct {
	ctx context.Context
	log *logging.Logger
	cfg Config

	mu    sync.Mutex
	tSubs map[events.Type]map[int]*subscription
	// these fields ensure a unique ID for all subscribers, regardless of what event types they subscribe to
	subs   map[int]subscription
	keys   []int
	eChans map[events.Type]chan []events.Event
	seq    uint64
}

// New creates a new base broker.
func New(ctx context.Context, log *logging.Logger, config Config) *Broker {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Broker{
		ctx:    ctx,
		log:    log,
		cfg:    config,
		tSubs:  map[events.Type]map[int]*subscription{},
		subs:   map[int]subscription{},
		keys:   []int{},
		eChans: map[events.Type]chan []events.Event{},
	}
}

// ReloadConf updates the internal configuration of the broker.
func (b *Broker) ReloadConf(cfg Config) {
	b.log.Info("reloading configuration")
	if b.log.GetLevel() != cfg.Level.Get() {
		b.log.Info("updating log level",
			logging.String("old", b.log.GetLevelString()),
			logging.String("new", cfg.Level.String()),
		)
		b.log.SetLevel(cfg.Level.Get())
	}
	b.mu.Lock()
	b.cfg = cfg
	b.mu.Unlock()
}

func (b *Broker) sendChannel(sub Subscriber, evts []events.Event, timeout time.Duration) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-b.ctx.Done():
	case <-sub.Closed():
	case sub.C() <- evts:
	case <-timer.C:
		b.dropped(evts, "subscriber too slow")
	}
}

func (b *Broker) sendChannelSync(sub Subscriber, evts []events.Event, timeout time.Duration) bool {
	select {
	case <-b.ctx.Done():
		return false
	case <-sub.Skip():
		return false
	case <-sub.Closed():
		return true
	case sub.C() <- evts:
		return false
	default:
		go b.sendChannel(sub, evts, timeout)
		return false
	}
}

func (b *Broker) startSending(t events.Type, evts []events.Event) {
	b.mu.Lock()
	for _, e := range evts {
		b.seq++
		e.SetSequenceID(b.seq)
	}
	ch, ok := b.eChans[t]
	if !ok {
		subs := b.getSubsByType(t)
		ln := len(subs) + 1
		ch = make(chan []events.Event, ln*20+b.cfg.MinChannelBuffer)
		b.eChans[t] = ch
	}
	timeout := b.cfg.SubscriberTimeout.Get()
	b.mu.Unlock()

	select {
	case ch <- evts:
	default:
		b.dropped(evts, "event channel full")
	}

	if ok {
		// the routine consuming the channel is already running
		return
	}
	go b.consume(ch, t, timeout)
}

func (b *Broker) consume(ch chan []events.Event, t events.Type, timeout time.Duration) {
	for {
		select {
		case <-b.ctx.Done():
			return
		case evts := <-ch:
			b.mu.Lock()
			subs := b.getSubsByType(t)
			b.mu.Unlock()
			unsub := make([]int, 0, len(subs))
			for k, sub := range subs {
				select {
				case <-b.ctx.Done():
					return
				case <-sub.Skip():
					continue
				case <-sub.Closed():
					unsub = append(unsub, k)
				default:
					if sub.required {
						sub.Push(evts...)
					} else if rm := b.sendChannelSync(sub, evts, timeout); rm {
						unsub = append(unsub, k)
					}
				}
			}
			if len(unsub) != 0 {
				b.mu.Lock()
				b.rmSubs(unsub...)
				b.mu.Unlock()
			}
		}
	}
}

func (b *Broker) dropped(evts []events.Event, reason string) {
	for _, e := range evts {
		metrics.EventDroppedInc(e.Type().String())
		b.log.Warn("dropping event",
			logging.String("event", e.Type().String()),
			logging.String("trace-id", e.TraceID()),
			logging.String("reason", reason),
		)
	}
}

// Send sends an event to all subscribers.
func (b *Broker) Send(event events.Event) {
	b.startSending(event.Type(), []events.Event{event})
}

// SendBatch sends a slice of events to subscribers, the events are
// expected to be of the same type.
func (b *Broker) SendBatch(evts []events.Event) {
	if len(evts) == 0 {
		return
	}
	b.startSending(evts[0].Type(), evts)
}

func (b *Broker) getSubsByType(t events.Type) map[int]*subscription {
	// the ALL subscribers are copied into the typed maps, so if set we can return it directly
	subs, ok := b.tSubs[t]
	if !ok {
		subs = b.tSubs[events.All]
	}
	cpy := make(map[int]*subscription, len(subs))
	for k, v := range subs {
		cpy[k] = v
	}
	return cpy
}

// Subscribe registers a new subscriber, returning the key.
func (b *Broker) Subscribe(s Subscriber) int {
	b.mu.Lock()
	k := b.subscribe(s)
	b.mu.Unlock()
	return k
}

func (b *Broker) SubscribeBatch(subs ...Subscriber) {
	b.mu.Lock()
	for _, s := range subs {
		k := b.subscribe(s)
		s.SetID(k)
	}
	b.mu.Unlock()
}

func (b *Broker) subscribe(s Subscriber) int {
	k := b.getKey()
	sub := subscription{
		Subscriber: s,
		required:   s.Ack(),
	}
	b.subs[k] = sub
	types := sub.Types()
	isAll := len(types) == 0
	for _, t := range types {
		if t == events.All {
			isAll = true
			break
		}
	}
	if isAll {
		types = []events.Type{events.All}
	}
	for _, t := range types {
		if _, ok := b.tSubs[t]; !ok {
			b.tSubs[t] = map[int]*subscription{}
			if !isAll {
				for ak, as := range b.tSubs[events.All] {
					b.tSubs[t][ak] = as
				}
			}
		}
		b.tSubs[t][k] = &sub
	}
	if isAll {
		for t := range b.tSubs {
			if t != events.All {
				b.tSubs[t][k] = &sub
			}
		}
	}
	return k
}

// Unsubscribe removes subscriber from broker
// this does not change the state of the subscriber.
func (b *Broker) Unsubscribe(k int) {
	b.mu.Lock()
	b.rmSubs(k)
	b.mu.Unlock()
}

func (b *Broker) getKey() int {
	if len(b.keys) > 0 {
		k := b.keys[0]
		b.keys = b.keys[1:]
		return k
	}
	return len(b.subs) + 1
}

func (b *Broker) rmSubs(keys ...int) {
	for _, k := range keys {
		// could be a duplicate call, the keys slice must not contain duplicates
		if _, ok := b.subs[k]; !ok {
			continue
		}
		for _, v := range b.tSubs {
			delete(v, k)
		}
		delete(b.subs, k)
		b.keys = append(b.keys, k)
	}
}
