package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/loopplatform/merchant-pulse/pkg/enums"
)

// Opportunity is the latest contract record for a merchant in the
// monetization program. Rows are replaced wholesale by the ingestion
// pipeline, which keeps the record with the newest close date per
// account; this service only reads them.
type Opportunity struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID     string    `gorm:"column:account_id;type:text;not null;uniqueIndex:ux_opportunities_account_id"`
	OpportunityID string    `gorm:"column:opportunity_id;type:text;not null"`
	MerchantName  string    `gorm:"column:merchant_name;type:text;not null"`
	Vertical      string    `gorm:"column:vertical;type:text;not null;index"`

	PricingModel enums.PricingModel `gorm:"column:pricing_model;type:text;not null;default:'other'"`
	LabelsPaidBy enums.LabelsPaidBy `gorm:"column:labels_paid_by;type:text;not null;default:'merchant'"`

	LoopSharePercent          decimal.Decimal `gorm:"column:loop_share_percent;type:numeric(7,4);not null;default:0"`
	InitialOffsetFee          decimal.Decimal `gorm:"column:initial_offset_fee;type:numeric(12,2);not null;default:0"`
	RefundHandlingFee         decimal.Decimal `gorm:"column:refund_handling_fee;type:numeric(12,2);not null;default:0"`
	DomesticReturnRatePercent decimal.Decimal `gorm:"column:domestic_return_rate_percent;type:numeric(7,4);not null;default:0"`
	BlendedAvgCostPerReturn   decimal.Decimal `gorm:"column:blended_avg_cost_per_return;type:numeric(12,2);not null;default:0"`

	AnnualOrderVolume           int64           `gorm:"column:annual_order_volume;not null;default:0"`
	AdoptionRateExpectedPercent decimal.Decimal `gorm:"column:adoption_rate_expected_percent;type:numeric(7,4);not null;default:0"`
	ExpectedAnnualRevenue       decimal.Decimal `gorm:"column:expected_annual_revenue;type:numeric(14,2);not null;default:0"`

	NetACV      decimal.Decimal `gorm:"column:net_acv;type:numeric(14,2);not null;default:0"`
	StartingACV decimal.Decimal `gorm:"column:starting_acv;type:numeric(14,2);not null;default:0"`
	EndingACV   decimal.Decimal `gorm:"column:ending_acv;type:numeric(14,2);not null;default:0"`

	CloseDate *time.Time `gorm:"column:close_date;type:date"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
