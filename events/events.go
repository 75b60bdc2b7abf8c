// Package events fans order state changes out to live admin dashboards.
package events

import (
	"time"
)

type Type string

const (
	OrderCreated      Type = "order.created"
	OrderDelivered    Type = "order.delivered"
	OrderCancelled    Type = "order.cancelled"
	OrderReturnStatus Type = "order.return_status"
)

type Event struct {
	Type      Type      `json:"type"`
	OrderID   uint      `json:"order_id"`
	OrderRef  string    `json:"order_ref,omitempty"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status,omitempty"`
	ProductID uint      `json:"product_id,omitempty"`
	Color     string    `json:"color,omitempty"`
	Size      string    `json:"size,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher must not block the caller for long; delivery is best effort.
type Publisher interface {
	Publish(Event)
}

type discard struct{}

func (discard) Publish(Event) {}

// Discard drops every event.
var Discard Publisher = discard{}

// Recorder keeps published events in memory.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(e Event) { r.Events = append(r.Events, e) }
