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

package notifications

import (
	"context"
	"time"

	"code.tierpay.io/referral/core/events"
	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/libs/num"
	"code.tierpay.io/referral/logging"
	"code.tierpay.io/referral/metrics"
	"code.tierpay.io/referral/subscribers"
)

//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks code.tierpay.io/referral/core/notifications Sink

const (
	namedLogger = "notifications"

	// EventNewEarning is the event name a recipient receives on a payout.
	EventNewEarning = "new-earning"

	defaultBuffer = 100
)

// Sink delivers a notification to whoever listens for the recipient.
type Sink interface {
	Publish(ctx context.Context, recipient types.AccountID, n Notification) error
}

type Notification struct {
	Recipient types.AccountID `json:"-"`
	Event     string          `json:"event"`
	Amount    num.Decimal     `json:"amount"`
	Level     uint8           `json:"level"`
	From      string          `json:"from"`
	Product   string          `json:"product"`
	Timestamp time.Time       `json:"timestamp"`
}

// FromCommissionPaid builds the notification sent to the beneficiary.
func FromCommissionPaid(e *events.CommissionPaid) Notification {
	c := e.Commission()
	return Notification{
		Recipient: c.BeneficiaryID,
		Event:     EventNewEarning,
		Amount:    c.Amount,
		Level:     uint8(c.Level),
		From:      e.PurchaserName(),
		Product:   e.ProductName(),
		Timestamp: c.CreatedAt,
	}
}

// Subscriber forwards commission payouts to a Sink. Delivery failures are
// logged and counted, they never reach the purchase that caused them.
type Subscriber struct {
	*subscribers.Base

	log  *logging.Logger
	sink Sink
}

func NewSubscriber(ctx context.Context, log *logging.Logger, sink Sink, ack bool) *Subscriber {
	s := &Subscriber{
		Base: subscribers.NewBase(ctx, defaultBuffer, ack),
		log:  log.Named(namedLogger),
		sink: sink,
	}
	if !ack {
		go s.loop(ctx)
	}
	return s
}

func (s *Subscriber) loop(ctx context.Context) {
	ch := s.Recv()
	for {
		select {
		case <-ctx.Done():
			s.Halt()
			return
		case evts, ok := <-ch:
			if !ok {
				return
			}
			s.Push(evts...)
		}
	}
}

func (s *Subscriber) Push(evts ...events.Event) {
	for _, e := range evts {
		paid, ok := e.(*events.CommissionPaid)
		if !ok {
			continue
		}

		n := FromCommissionPaid(paid)
		if err := s.sink.Publish(e.Context(), n.Recipient, n); err != nil {
			metrics.NotificationInc("failed")
			s.log.Warn("could not deliver notification",
				logging.AccountID(n.Recipient.String()),
				logging.String("purchase-id", paid.Commission().PurchaseID.String()),
				logging.String("trace-id", e.TraceID()),
				logging.Error(err),
			)
			continue
		}
		metrics.NotificationInc("delivered")
	}
}

func (s *Subscriber) Types() []events.Type {
	return []events.Type{
		events.CommissionPaidEvent,
	}
}
