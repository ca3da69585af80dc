package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusConfirmed  OrderStatus = "CONFIRMED"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// ItemID accepts either a JSON string or a JSON number and always
// serializes as a string.
type ItemID string

func (id *ItemID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*id = ItemID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("item id must be a string or number: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

type Item struct {
	ID       ItemID  `json:"id" validate:"required"`
	Title    string  `json:"title" validate:"required"`
	Quantity int     `json:"quantity" validate:"gte=1"`
	Price    float64 `json:"price" validate:"gt=0"`
}

func (it Item) Subtotal() float64 { return float64(it.Quantity) * it.Price }

// Order is untrusted order input. It is never stored before Validate passes.
type Order struct {
	UserID        string `json:"userId" validate:"required"`
	Items         []Item `json:"items" validate:"required,min=1,dive"`
	CustomerEmail string `json:"customerEmail" validate:"required,email"`
	CustomerName  string `json:"customerName" validate:"required"`
	CustomerPhone string `json:"customerPhone,omitempty" validate:"omitempty,e164"`
}

// Normalize trims free-text fields in place.
func (o *Order) Normalize() {
	o.UserID = strings.TrimSpace(o.UserID)
	o.CustomerEmail = strings.ToLower(strings.TrimSpace(o.CustomerEmail))
	o.CustomerName = strings.TrimSpace(o.CustomerName)
	o.CustomerPhone = strings.TrimSpace(o.CustomerPhone)
	for i := range o.Items {
		o.Items[i].Title = strings.TrimSpace(o.Items[i].Title)
	}
}

// Total is the sum of quantity*price over all items.
func (o Order) Total() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.Subtotal()
	}
	return sum
}

type StoredOrder struct {
	OrderID       string      `json:"orderId"`
	UserID        string      `json:"userId"`
	Items         []Item      `json:"items"`
	CustomerEmail string      `json:"customerEmail"`
	CustomerName  string      `json:"customerName"`
	CustomerPhone string      `json:"customerPhone,omitempty"`
	TotalAmount   float64     `json:"totalAmount"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// NewStoredOrder derives the persisted shape of o. The total is always
// recomputed from the items.
func NewStoredOrder(id string, o Order, now time.Time) StoredOrder {
	items := make([]Item, len(o.Items))
	copy(items, o.Items)
	return StoredOrder{
		OrderID:       id,
		UserID:        o.UserID,
		Items:         items,
		CustomerEmail: o.CustomerEmail,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		TotalAmount:   o.Total(),
		Status:        StatusPending,
		CreatedAt:     now.UTC(),
	}
}
