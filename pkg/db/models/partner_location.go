package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// PartnerLocation is a serving location guests can order against. Rows are
// maintained by the back office; this service only ever reads them.
type PartnerLocation struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name            string          `gorm:"column:name;not null" json:"name"`
	Address         string          `gorm:"column:address;not null" json:"address"`
	Lat             *float64        `gorm:"column:lat" json:"lat,omitempty"`
	Lng             *float64        `gorm:"column:lng" json:"lng,omitempty"`
	IsHeadquarters  bool            `gorm:"column:is_headquarters;not null;default:false" json:"is_headquarters"`
	IsOpen          bool            `gorm:"column:is_open;not null;default:true" json:"is_open"`
	BaseDeliveryFee decimal.Decimal `gorm:"column:base_delivery_fee;type:numeric(10,2);not null;default:0" json:"base_delivery_fee"`
	FeePerKm        decimal.Decimal `gorm:"column:fee_per_km;type:numeric(10,2);not null;default:0" json:"fee_per_km"`
	DeliveryRadius  *float64        `gorm:"column:delivery_radius_km" json:"delivery_radius_km,omitempty"`
	Slug            *string         `gorm:"column:slug;uniqueIndex" json:"slug,omitempty"`
	PaymentMethods  pq.StringArray  `gorm:"column:payment_methods;type:text[]" json:"payment_methods"`
	PrepTimeMinMins int             `gorm:"column:prep_time_min_minutes;not null;default:0" json:"prep_time_min_minutes"`
	PrepTimeMaxMins int             `gorm:"column:prep_time_max_minutes;not null;default:0" json:"prep_time_max_minutes"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (PartnerLocation) TableName() string {
	return "partner_locations"
}

// HasCoordinates reports whether the location can act as a delivery origin.
func (p PartnerLocation) HasCoordinates() bool {
	return p.Lat != nil && p.Lng != nil
}
