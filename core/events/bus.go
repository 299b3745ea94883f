// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package events

import (
	"context"
	"strings"

	rctx "code.tierpay.io/referral/libs/context"
)

type Type int

// Base common denominator all event-bus events share.
type Base struct {
	ctx     context.Context
	traceID string
	seq     uint64
	et      Type
}

// Event is the interface all events sent on the broker implement.
type Event interface {
	Type() Type
	Context() context.Context
	TraceID() string
	Sequence() uint64
	SetSequenceID(s uint64)
	Replace(context.Context)
}

const (
	// All event type -> used by subscribers to just receive all events, has no actual corresponding event payload.
	All Type = iota
	AccountRegisteredEvent
	ReferralAttachedEvent
	PurchaseRecordedEvent
	CommissionPaidEvent
	AggregateDriftEvent
)

var eventStrings = map[Type]string{
	All:                    "ALL",
	AccountRegisteredEvent: "AccountRegisteredEvent",
	ReferralAttachedEvent:  "ReferralAttachedEvent",
	PurchaseRecordedEvent:  "PurchaseRecordedEvent",
	CommissionPaidEvent:    "CommissionPaidEvent",
	AggregateDriftEvent:    "AggregateDriftEvent",
}

func newBase(ctx context.Context, t Type) *Base {
	ctx, tID := rctx.TraceIDFromContext(ctx)
	return &Base{
		ctx:     ctx,
		traceID: tID,
		et:      t,
	}
}

// Replace updates the context of the event. Only used when the event has to
// outlive the request that created it.
func (b *Base) Replace(ctx context.Context) {
	b.ctx = ctx
}

func (b Base) TraceID() string {
	return b.traceID
}

// SetSequenceID sets the sequence ID, only once.
func (b *Base) SetSequenceID(s uint64) {
	if b.seq != 0 {
		return
	}
	b.seq = s
}

func (b Base) Sequence() uint64 {
	return b.seq
}

func (b Base) Context() context.Context {
	return b.ctx
}

func (b Base) Type() Type {
	return b.et
}

// String get string representation of event type.
func (t Type) String() string {
	s, ok := eventStrings[t]
	if !ok {
		return "UNKNOWN EVENT"
	}
	return s
}

// TryFromString tries to parse a raw string into an event type, false indicates that.
func TryFromString(s string) (*Type, bool) {
	for k, v := range eventStrings {
		if strings.EqualFold(s, v) {
			return &k, true
		}
	}
	return nil, false
}

// GetAccountIDFilter matches the events that concern the given account.
func GetAccountIDFilter(id string) func(Event) bool {
	return func(e Event) bool {
		ae, ok := e.(accountFilterable)
		if !ok {
			return false
		}
		return ae.IsAccount(id)
	}
}

type accountFilterable interface {
	Event
	IsAccount(id string) bool
}
