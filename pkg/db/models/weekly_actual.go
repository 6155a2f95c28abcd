package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WeeklyActual is one week of merchant telemetry. The ingestion pipeline
// replaces a merchant's rows wholesale per batch; acceptedOffers ≤
// offerShown ≤ ecommOrders is expected of the source but not enforced
// here, so readers must tolerate violations.
type WeeklyActual struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID string    `gorm:"column:account_id;type:text;not null;uniqueIndex:ux_weekly_actuals_account_week,priority:1"`
	ISOWeek   int       `gorm:"column:iso_week;not null;uniqueIndex:ux_weekly_actuals_account_week,priority:2"`

	OrderWeekDate  time.Time  `gorm:"column:order_week_date;type:date;not null"`
	FirstOfferDate *time.Time `gorm:"column:first_offer_date;type:date"`

	EcommOrders    int64 `gorm:"column:ecomm_orders;not null;default:0"`
	OfferShown     int64 `gorm:"column:offer_shown;not null;default:0"`
	OfferNotShown  int64 `gorm:"column:offer_not_shown;not null;default:0"`
	AcceptedOffers int64 `gorm:"column:accepted_offers;not null;default:0"`

	AttachRatePercent decimal.Decimal `gorm:"column:attach_rate_percent;type:numeric(7,4);not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
