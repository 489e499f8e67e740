package models

import "github.com/shopspring/decimal"

type LedgerContact struct {
	AddressLines []string `json:"address_lines,omitempty"`
	State        string   `json:"state,omitempty"`
	Country      string   `json:"country,omitempty"`
	Pincode      string   `json:"pincode,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Mobile       string   `json:"mobile,omitempty"`
	Email        string   `json:"email,omitempty"`
	ContactName  string   `json:"contact_name,omitempty"`
}

type LedgerBankDetails struct {
	AccountHolderName string `json:"account_holder_name,omitempty"`
	AccountNumber     string `json:"account_number,omitempty"`
	IFSCode           string `json:"ifs_code,omitempty"`
	SwiftCode         string `json:"swift_code,omitempty"`
	BankName          string `json:"bank_name,omitempty"`
	BranchName        string `json:"branch_name,omitempty"`
}

type LedgerTaxRegistration struct {
	GSTIN               string `json:"gstin,omitempty"`
	GSTRegistrationType string `json:"gst_registration_type,omitempty"`
	GSTDutyHead         string `json:"gst_duty_head,omitempty"`
	VATTinNumber        string `json:"vat_tin_number,omitempty"`
	SalesTaxNumber      string `json:"sales_tax_number,omitempty"`
	IncomeTaxNumber     string `json:"income_tax_number,omitempty"`
	ServiceTaxNumber    string `json:"service_tax_number,omitempty"`
}

// LedgerFlags are Tally's boolean capability toggles, delivered as "Yes"/"No"
// text fields on the ledger master.
type LedgerFlags struct {
	IsBillwiseOn         bool `json:"is_billwise_on"`
	IsCostCentresOn      bool `json:"is_cost_centres_on"`
	IsInterestOn         bool `json:"is_interest_on"`
	IsRevenue            bool `json:"is_revenue"`
	IsDeemedPositive     bool `json:"is_deemed_positive"`
	AffectsStock         bool `json:"affects_stock"`
	IsCondensed          bool `json:"is_condensed"`
	AllowInMobile        bool `json:"allow_in_mobile"`
	UseForVAT            bool `json:"use_for_vat"`
	IsGSTApplicable      bool `json:"is_gst_applicable"`
	IsTDSApplicable      bool `json:"is_tds_applicable"`
	IsTCSApplicable      bool `json:"is_tcs_applicable"`
	IsServiceTaxApplic   bool `json:"is_service_tax_applicable"`
	IsExciseApplicable   bool `json:"is_excise_applicable"`
	ForPayroll           bool `json:"for_payroll"`
	IsABCEnabled         bool `json:"is_abc_enabled"`
	InterestOnBillwise   bool `json:"interest_on_billwise"`
	OverrideInterest     bool `json:"override_interest"`
	OverrideAdvInterest  bool `json:"override_adv_interest"`
	UseForLoanAccount    bool `json:"use_for_loan_account"`
	IgnoreTDSExemptLimit bool `json:"ignore_tds_exempt_limit"`
	IsTDSExpense         bool `json:"is_tds_expense"`
	IsECommerceSupplier  bool `json:"is_ecommerce_supplier"`
	ShowInPayslip        bool `json:"show_in_payslip"`
	UseAsNotionalBank    bool `json:"use_as_notional_bank"`
}

type BillAllocation struct {
	Name     string          `json:"name"`
	BillType string          `json:"bill_type,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

type CostCentreAllocation struct {
	CostCentre string          `json:"cost_centre"`
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category,omitempty"`
	LedgerName string          `json:"ledger_name,omitempty"`
}

type InterestDetail struct {
	Style      string          `json:"style,omitempty"`
	Rate       decimal.Decimal `json:"rate"`
	AppliedOn  string          `json:"applied_on,omitempty"`
	FromEffect string          `json:"from_effect,omitempty"`
}

type ForexDetail struct {
	Currency     string          `json:"currency,omitempty"`
	ForexAmount  decimal.Decimal `json:"forex_amount"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
}

type TallyLedger struct {
	SyncedBase
	Parent          string                 `gorm:"index;size:255" json:"parent"`
	Currency        string                 `gorm:"size:32" json:"currency"`
	OpeningBalance  decimal.Decimal        `gorm:"type:decimal(20,6)" json:"opening_balance"`
	ClosingBalance  decimal.Decimal        `gorm:"type:decimal(20,6)" json:"closing_balance"`
	CreditPeriod    string                 `gorm:"size:32" json:"credit_period"`
	CreditLimit     decimal.Decimal        `gorm:"type:decimal(20,6)" json:"credit_limit"`
	Contact         LedgerContact          `gorm:"serializer:json" json:"contact"`
	BankDetails     LedgerBankDetails      `gorm:"serializer:json" json:"bank_details"`
	TaxRegistration LedgerTaxRegistration  `gorm:"serializer:json" json:"tax_registration"`
	Flags           LedgerFlags            `gorm:"serializer:json" json:"flags"`
	BillAllocations []BillAllocation       `gorm:"serializer:json" json:"bill_allocations"`
	CostCentres     []CostCentreAllocation `gorm:"serializer:json" json:"cost_centres"`
	InterestDetails []InterestDetail       `gorm:"serializer:json" json:"interest_details"`
	ForexDetails    []ForexDetail          `gorm:"serializer:json" json:"forex_details"`
}

func (TallyLedger) EntityType() string { return EntityTypeLedger }
