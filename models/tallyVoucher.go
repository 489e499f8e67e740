package models

import "github.com/shopspring/decimal"

type VoucherLedgerEntry struct {
	LedgerName string          `json:"ledger_name"`
	Amount     decimal.Decimal `json:"amount"`
	IsDebit    bool            `json:"is_debit"`
}

type TallyVoucher struct {
	SyncedBase
	// Date is kept as Tally sends it (YYYYMMDD); presentation-layer
	// formatting is not this service's concern.
	Date            string                 `gorm:"index;size:16" json:"date"`
	VoucherNumber   string                 `gorm:"size:64" json:"voucher_number"`
	VoucherTypeName string                 `gorm:"index;size:128" json:"voucher_type_name"`
	PartyLedgerName string                 `gorm:"index;size:255" json:"party_ledger_name"`
	Narration       string                 `gorm:"type:text" json:"narration"`
	Reference       string                 `gorm:"size:128" json:"reference"`
	Amount          decimal.Decimal        `gorm:"type:decimal(20,6)" json:"amount"`
	IsCancelled     bool                   `json:"is_cancelled"`
	IsOptional      bool                   `json:"is_optional"`
	LedgerEntries   []VoucherLedgerEntry   `gorm:"serializer:json" json:"ledger_entries"`
	CostCentres     []CostCentreAllocation `gorm:"serializer:json" json:"cost_centres"`
}

func (TallyVoucher) EntityType() string { return EntityTypeVoucher }
