package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SeasonalityCurve is one (curve, ISO week) point of the expected
// distribution of annual order volume. Two curves exist in practice:
// "Swimwear" and the catch-all "Total ex. Swimwear"; per-curve
// percentages sum to roughly 100 across weeks 1–52.
type SeasonalityCurve struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Vertical string    `gorm:"column:vertical;type:text;not null;uniqueIndex:ux_seasonality_curves_vertical_week,priority:1"`
	ISOWeek  int       `gorm:"column:iso_week;not null;uniqueIndex:ux_seasonality_curves_vertical_week,priority:2"`

	OrderPercentage decimal.Decimal `gorm:"column:order_percentage;type:numeric(9,6);not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
