package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the submitted snapshot handed downstream. Totals are captured at
// submission time and never recomputed from the lines afterwards.
type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GuestID       string          `gorm:"column:guest_id;not null;index" json:"guest_id"`
	ContextKind   string          `gorm:"column:context_kind;not null" json:"context_kind"`
	PartnerID     *uuid.UUID      `gorm:"column:partner_id;type:uuid" json:"partner_id,omitempty"`
	PartnerName   *string         `gorm:"column:partner_name" json:"partner_name,omitempty"`
	ItemsTotal    decimal.Decimal `gorm:"column:items_total;type:numeric(10,2);not null" json:"items_total"`
	DeliveryFee   decimal.Decimal `gorm:"column:delivery_fee;type:numeric(10,2);not null;default:0" json:"delivery_fee"`
	GrandTotal    decimal.Decimal `gorm:"column:grand_total;type:numeric(10,2);not null" json:"grand_total"`
	DistanceKm    *float64        `gorm:"column:distance_km" json:"distance_km,omitempty"`
	DeliveryLat   *float64        `gorm:"column:delivery_lat" json:"delivery_lat,omitempty"`
	DeliveryLng   *float64        `gorm:"column:delivery_lng" json:"delivery_lng,omitempty"`
	PaymentMethod *string         `gorm:"column:payment_method" json:"payment_method,omitempty"`
	Lines         []OrderLine     `gorm:"foreignKey:OrderID" json:"lines"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderLine mirrors one cart line at submission time, add-ons flattened into
// a JSON column since they are never queried individually.
type OrderLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index" json:"-"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	ProductName string          `gorm:"column:product_name;not null" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null" json:"unit_price"`
	Quantity    int             `gorm:"column:quantity;not null" json:"quantity"`
	Notes       string          `gorm:"column:notes" json:"notes,omitempty"`
	AddOns      []byte          `gorm:"column:add_ons;type:jsonb" json:"add_ons,omitempty"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2);not null" json:"subtotal"`
}

func (OrderLine) TableName() string {
	return "order_lines"
}
