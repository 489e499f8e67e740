package models

import "github.com/shopspring/decimal"

type TallyGroup struct {
	SyncedBase
	Parent             string `gorm:"index;size:255" json:"parent"`
	NatureOfGroup      string `gorm:"size:64" json:"nature_of_group"`
	IsRevenue          bool   `json:"is_revenue"`
	IsDeemedPositive   bool   `json:"is_deemed_positive"`
	IsSubLedger        bool   `json:"is_sub_ledger"`
	AffectsGrossProfit bool   `json:"affects_gross_profit"`
	SortPosition       int    `json:"sort_position"`
}

func (TallyGroup) EntityType() string { return EntityTypeGroup }

type TallyCostCentre struct {
	SyncedBase
	Parent   string `gorm:"index;size:255" json:"parent"`
	Category string `gorm:"index;size:255" json:"category"`
	Email    string `gorm:"size:255" json:"email"`
}

func (TallyCostCentre) EntityType() string { return EntityTypeCostCentre }

type TallyCurrency struct {
	SyncedBase
	Symbol         string          `gorm:"size:16" json:"symbol"`
	FormalName     string          `gorm:"size:128" json:"formal_name"`
	DecimalPlaces  int             `json:"decimal_places"`
	ExchangeRate   decimal.Decimal `gorm:"type:decimal(20,6)" json:"exchange_rate"`
	IsSuffix       bool            `json:"is_suffix"`
	HasSpace       bool            `json:"has_space"`
	DecimalSymbol  string          `gorm:"size:16" json:"decimal_symbol"`
}

func (TallyCurrency) EntityType() string { return EntityTypeCurrency }

type TallyCompany struct {
	SyncedBase
	FinancialYearFrom string   `gorm:"size:16" json:"financial_year_from"`
	BooksFrom         string   `gorm:"size:16" json:"books_from"`
	AddressLines      []string `gorm:"serializer:json" json:"address_lines"`
	State             string   `gorm:"size:128" json:"state"`
	Pincode           string   `gorm:"size:16" json:"pincode"`
	Email             string   `gorm:"size:255" json:"email"`
	GSTIN             string   `gorm:"size:32" json:"gstin"`
	VATTinNumber      string   `gorm:"size:32" json:"vat_tin_number"`
	IncomeTaxNumber   string   `gorm:"size:32" json:"income_tax_number"`
}

func (TallyCompany) EntityType() string { return EntityTypeCompany }
