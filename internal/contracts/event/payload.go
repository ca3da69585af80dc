package event

import (
	"bytes"
	"encoding/json"
	"time"
)

// Payload is the closed set of event bodies. Only types in this package
// implement it.
type Payload interface {
	EventType() Type
	orderID() string
}

// OrderID returns the order a payload belongs to. It is the partition key.
func OrderID(p Payload) string { return p.orderID() }

type LineItem struct {
	ID       string  `json:"id" validate:"required"`
	Title    string  `json:"title" validate:"required"`
	Quantity int     `json:"quantity" validate:"gte=1"`
	Price    float64 `json:"price" validate:"gt=0"`
}

type OrderCreated struct {
	OrderID       string     `json:"orderId" validate:"required"`
	UserID        string     `json:"userId" validate:"required"`
	Items         []LineItem `json:"items" validate:"required,min=1,dive"`
	TotalAmount   float64    `json:"totalAmount" validate:"gt=0"`
	CustomerEmail string     `json:"customerEmail" validate:"required,email"`
	CustomerName  string     `json:"customerName" validate:"required"`
	CustomerPhone string     `json:"customerPhone,omitempty"`
	Status        string     `json:"status" validate:"required"`
	CreatedAt     time.Time  `json:"createdAt" validate:"required"`
}

func (OrderCreated) EventType() Type   { return TypeOrderCreated }
func (p OrderCreated) orderID() string { return p.OrderID }

type OrderStatusUpdated struct {
	OrderID        string    `json:"orderId" validate:"required"`
	UserID         string    `json:"userId,omitempty"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	Status         string    `json:"status" validate:"required"`
	CustomerEmail  string    `json:"customerEmail" validate:"required,email"`
	CustomerName   string    `json:"customerName,omitempty"`
	CustomerPhone  string    `json:"customerPhone,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt" validate:"required"`
}

func (OrderStatusUpdated) EventType() Type   { return TypeOrderStatusUpdated }
func (p OrderStatusUpdated) orderID() string { return p.OrderID }

type OrderCancelled struct {
	OrderID       string    `json:"orderId" validate:"required"`
	UserID        string    `json:"userId,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	CustomerEmail string    `json:"customerEmail" validate:"required,email"`
	CustomerName  string    `json:"customerName,omitempty"`
	CustomerPhone string    `json:"customerPhone,omitempty"`
	CancelledAt   time.Time `json:"cancelledAt" validate:"required"`
}

func (OrderCancelled) EventType() Type   { return TypeOrderCancelled }
func (p OrderCancelled) orderID() string { return p.OrderID }

type decodeFunc func(json.RawMessage) (Payload, error)

var registry = map[Type]decodeFunc{
	TypeOrderCreated:       decodeAs[OrderCreated],
	TypeOrderStatusUpdated: decodeAs[OrderStatusUpdated],
	TypeOrderCancelled:     decodeAs[OrderCancelled],
}

func decodeAs[T Payload](raw json.RawMessage) (Payload, error) {
	var p T
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&p); err != nil {
		return nil, err
	}
	return p, nil
}
