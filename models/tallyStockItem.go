package models

import "github.com/shopspring/decimal"

type BatchAllocation struct {
	BatchName   string          `json:"batch_name"`
	GodownName  string          `json:"godown_name,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Value       decimal.Decimal `json:"value"`
	MfgDate     string          `json:"mfg_date,omitempty"`
	ExpiryDate  string          `json:"expiry_date,omitempty"`
}

type GodownBalance struct {
	GodownName string          `json:"godown_name"`
	Quantity   decimal.Decimal `json:"quantity"`
	Value      decimal.Decimal `json:"value"`
}

type PriceDetail struct {
	PriceLevel string          `json:"price_level,omitempty"`
	Date       string          `json:"date,omitempty"`
	Rate       decimal.Decimal `json:"rate"`
}

type StockTaxDetail struct {
	HSNCode       string          `json:"hsn_code,omitempty"`
	Taxability    string          `json:"taxability,omitempty"`
	Rate          decimal.Decimal `json:"rate"`
	ApplicableFrom string         `json:"applicable_from,omitempty"`
}

// StockItemFlags are Tally's "Yes"/"No" usage toggles on the stock master.
type StockItemFlags struct {
	ForSale                  bool `json:"for_sale"`
	ForPurchase              bool `json:"for_purchase"`
	IsBatchWiseOn            bool `json:"is_batch_wise_on"`
	IsPerishableOn           bool `json:"is_perishable_on"`
	HasMfgDate               bool `json:"has_mfg_date"`
	AllowUseOfExpiredItems   bool `json:"allow_use_of_expired_items"`
	IgnoreBatches            bool `json:"ignore_batches"`
	IgnoreGodowns            bool `json:"ignore_godowns"`
	IsCostCentresOn          bool `json:"is_cost_centres_on"`
	IsEntryTaxApplicable     bool `json:"is_entry_tax_applicable"`
	IsCostTrackingOn         bool `json:"is_cost_tracking_on"`
	IsUpdatingTargetId       bool `json:"is_updating_target_id"`
	IsSecurityOnWhenEntered  bool `json:"is_security_on_when_entered"`
	TreatSalesAsManufactured bool `json:"treat_sales_as_manufactured"`
	TreatPurchasesAsConsumed bool `json:"treat_purchases_as_consumed"`
	TreatRejectsAsScrap      bool `json:"treat_rejects_as_scrap"`
}

type TallyStockItem struct {
	SyncedBase
	Parent          string           `gorm:"index;size:255" json:"parent"`
	Category        string           `gorm:"index;size:255" json:"category"`
	BaseUnits       string           `gorm:"size:64" json:"base_units"`
	OpeningQty      decimal.Decimal  `gorm:"type:decimal(20,6)" json:"opening_qty"`
	OpeningValue    decimal.Decimal  `gorm:"type:decimal(20,6)" json:"opening_value"`
	OpeningRate     decimal.Decimal  `gorm:"type:decimal(20,6)" json:"opening_rate"`
	ClosingQty      decimal.Decimal  `gorm:"type:decimal(20,6)" json:"closing_qty"`
	ClosingValue    decimal.Decimal  `gorm:"type:decimal(20,6)" json:"closing_value"`
	ClosingRate     decimal.Decimal  `gorm:"type:decimal(20,6)" json:"closing_rate"`
	ReorderLevel    decimal.Decimal  `gorm:"type:decimal(20,6)" json:"reorder_level"`
	MinimumLevel    decimal.Decimal  `gorm:"type:decimal(20,6)" json:"minimum_level"`
	MaximumLevel    decimal.Decimal  `gorm:"type:decimal(20,6)" json:"maximum_level"`
	StockStatus     StockStatus      `gorm:"size:20;not null;default:'Unknown'" json:"stock_status"`
	Flags           StockItemFlags   `gorm:"serializer:json" json:"flags"`
	BatchAllocations []BatchAllocation `gorm:"serializer:json" json:"batch_allocations"`
	GodownBalances  []GodownBalance  `gorm:"serializer:json" json:"godown_balances"`
	StandardPrices  []PriceDetail    `gorm:"serializer:json" json:"standard_prices"`
	StandardCosts   []PriceDetail    `gorm:"serializer:json" json:"standard_costs"`
	GSTDetails      []StockTaxDetail `gorm:"serializer:json" json:"gst_details"`
	VATDetails      []StockTaxDetail `gorm:"serializer:json" json:"vat_details"`
}

func (TallyStockItem) EntityType() string { return EntityTypeStockItem }
