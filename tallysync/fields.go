package tallysync

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// EntityType selects which Tally collection a request exports.
type EntityType string

const (
	EntityCompany    EntityType = "company"
	EntityLedger     EntityType = "ledger"
	EntityVoucher    EntityType = "voucher"
	EntityStockItem  EntityType = "stock_item"
	EntityGroup      EntityType = "group"
	EntityCostCentre EntityType = "cost_centre"
	EntityCurrency   EntityType = "currency"
)

// tallyEpoch is the from-date used when a voucher request has no explicit
// range; Tally itself accepts nothing earlier.
const tallyEpoch = "19900101"

const dateLayout = "20060102"

// DateRange is the inclusive voucher filter, 8-digit YYYYMMDD on the wire.
type DateRange struct {
	From string
	To   string
}

func (r DateRange) orDefault(now time.Time) DateRange {
	if strings.TrimSpace(r.From) == "" {
		r.From = tallyEpoch
	}
	if strings.TrimSpace(r.To) == "" {
		r.To = now.Format(dateLayout)
	}
	return r
}

// entitySpec is the data-driven request table: one generic builder consumes
// it instead of one builder type per entity.
type entitySpec struct {
	collectionName string // logical collection name in the request header
	tallyType      string // TDL object type
	itemKeys       []string
	fetchFields    []string
	datable        bool // honors SVFROMDATE/SVTODATE
}

var entitySpecs = map[EntityType]entitySpec{
	EntityCompany: {
		collectionName: "List of Companies",
		tallyType:      "Company",
		itemKeys:       []string{"COMPANY", "Company", "company"},
		fetchFields: []string{
			"NAME", "GUID", "STARTINGFROM", "BOOKSFROM", "ADDRESS",
			"STATENAME", "PINCODE", "EMAIL", "GSTREGISTRATIONNUMBER",
			"VATTINNUMBER", "INCOMETAXNUMBER",
		},
	},
	EntityLedger: {
		collectionName: "List of Ledgers",
		tallyType:      "Ledger",
		itemKeys:       []string{"LEDGER", "Ledger", "ledger"},
		fetchFields: []string{
			"NAME", "GUID", "MASTERID", "ALTERID", "PARENT", "CURRENCYNAME",
			"OPENINGBALANCE", "CLOSINGBALANCE", "CREDITPERIOD", "CREDITLIMIT",
			"ADDRESS", "LEDSTATENAME", "COUNTRYNAME", "PINCODE",
			"LEDGERPHONE", "LEDGERMOBILE", "EMAIL", "LEDGERCONTACT",
			"BANKACCHOLDERNAME", "BANKDETAILS", "IFSCODE", "SWIFTCODE",
			"BANKNAME", "BANKBRANCHNAME",
			"PARTYGSTIN", "GSTREGISTRATIONTYPE", "GSTDUTYHEAD",
			"VATTINNUMBER", "SALESTAXNUMBER", "INCOMETAXNUMBER",
			"SERVICETAXNUMBER",
			"ISBILLWISEON", "ISCOSTCENTRESON", "ISINTERESTON", "ISREVENUE",
			"ISDEEMEDPOSITIVE", "AFFECTSSTOCK", "ISCONDENSED",
			"ALLOWINMOBILE", "USEFORVAT", "ISGSTAPPLICABLE", "ISTDSAPPLICABLE",
			"ISTCSAPPLICABLE", "ISSERVICETAXAPPLICABLE", "ISEXCISEAPPLICABLE",
			"FORPAYROLL", "ISABCENABLED", "INTERESTONBILLWISE",
			"OVERRIDEINTEREST", "OVERRIDEADVINTEREST", "USEFORLOANACCOUNT",
			"IGNORETDSEXEMPTLIMIT", "ISTDSEXPENSE", "ISECOMMERCESUPPLIER",
			"SHOWINPAYSLIP", "USEASNOTIONALBANK",
			"BILLALLOCATIONS.LIST", "COSTCENTREALLOCATIONS.LIST",
			"INTERESTCOLLECTION.LIST", "FOREXDETAILS.LIST",
		},
	},
	EntityVoucher: {
		collectionName: "List of Vouchers",
		tallyType:      "Voucher",
		itemKeys:       []string{"VOUCHER", "Voucher", "voucher"},
		fetchFields: []string{
			"DATE", "GUID", "MASTERID", "ALTERID", "VOUCHERNUMBER",
			"VOUCHERTYPENAME", "PARTYLEDGERNAME", "NARRATION", "REFERENCE",
			"AMOUNT", "ISCANCELLED", "ISOPTIONAL",
			"ALLLEDGERENTRIES.LIST", "LEDGERENTRIES.LIST",
		},
		datable: true,
	},
	EntityStockItem: {
		collectionName: "List of Stock Items",
		tallyType:      "StockItem",
		itemKeys:       []string{"STOCKITEM", "StockItem", "stockitem"},
		fetchFields: []string{
			"NAME", "GUID", "MASTERID", "ALTERID", "PARENT", "CATEGORY",
			"BASEUNITS", "OPENINGBALANCE", "OPENINGVALUE", "OPENINGRATE",
			"CLOSINGBALANCE", "CLOSINGVALUE", "CLOSINGRATE",
			"REORDERLEVEL", "MINIMUMLEVEL", "MAXIMUMLEVEL",
			"FORSALE", "FORPURCHASE", "ISBATCHWISEON", "ISPERISHABLEON",
			"HASMFGDATE", "ALLOWUSEOFEXPIREDITEMS", "IGNOREBATCHES",
			"IGNOREGODOWNS", "ISCOSTCENTRESON", "ISENTRYTAXAPPLICABLE",
			"ISCOSTTRACKINGON", "ISUPDATINGTARGETID", "ISSECURITYONWHENENTERED",
			"TREATSALESASMANUFACTURED", "TREATPURCHASESASCONSUMED",
			"TREATREJECTSASSCRAP",
			"BATCHALLOCATIONS.LIST", "GODOWNBALANCE.LIST",
			"STANDARDPRICELIST.LIST", "STANDARDCOSTLIST.LIST",
			"GSTDETAILS.LIST", "VATDETAILS.LIST",
		},
	},
	EntityGroup: {
		collectionName: "List of Groups",
		tallyType:      "Group",
		itemKeys:       []string{"GROUP", "Group", "group"},
		fetchFields: []string{
			"NAME", "GUID", "MASTERID", "ALTERID", "PARENT", "NATUREOFGROUP",
			"ISREVENUE", "ISDEEMEDPOSITIVE", "ISSUBLEDGER",
			"AFFECTSGROSSPROFIT", "SORTPOSITION",
		},
	},
	EntityCostCentre: {
		collectionName: "List of Cost Centres",
		tallyType:      "CostCentre",
		itemKeys:       []string{"COSTCENTRE", "CostCentre", "costcentre"},
		fetchFields: []string{
			"NAME", "GUID", "MASTERID", "ALTERID", "PARENT", "CATEGORY",
			"EMAILID",
		},
	},
	EntityCurrency: {
		collectionName: "List of Currencies",
		tallyType:      "Currency",
		itemKeys:       []string{"CURRENCY", "Currency", "currency"},
		fetchFields: []string{
			"NAME", "GUID", "MASTERID", "ALTERID", "MAILINGNAME",
			"DECIMALPLACES", "EXPANDEDSYMBOL", "ISSUFFIX", "HASSPACE",
			"DECIMALSYMBOL", "RATEOFEXCHANGE",
		},
	},
}

// buildExportRequest renders the XML request envelope for an entity export.
// Every entity goes through this one builder; the per-entity differences
// live entirely in the entitySpecs table.
func buildExportRequest(entity EntityType, companyName string, dr DateRange, now time.Time) (string, error) {
	spec, ok := entitySpecs[entity]
	if !ok {
		return "", fmt.Errorf("unknown entity type %q", entity)
	}

	var b bytes.Buffer
	b.WriteString("<ENVELOPE>")
	b.WriteString("<HEADER>")
	b.WriteString("<VERSION>1</VERSION>")
	b.WriteString("<TALLYREQUEST>Export</TALLYREQUEST>")
	b.WriteString("<TYPE>Collection</TYPE>")
	b.WriteString("<ID>" + xmlEscape(spec.collectionName) + "</ID>")
	b.WriteString("</HEADER>")
	b.WriteString("<BODY>")
	b.WriteString("<DESC>")
	b.WriteString("<STATICVARIABLES>")
	b.WriteString("<SVEXPORTFORMAT>$$SysName:XML</SVEXPORTFORMAT>")
	if spec.datable {
		dr = dr.orDefault(now)
		b.WriteString("<SVFROMDATE>" + xmlEscape(dr.From) + "</SVFROMDATE>")
		b.WriteString("<SVTODATE>" + xmlEscape(dr.To) + "</SVTODATE>")
	}
	if strings.TrimSpace(companyName) != "" {
		b.WriteString("<SVCURRENTCOMPANY>" + xmlEscape(companyName) + "</SVCURRENTCOMPANY>")
	}
	b.WriteString("</STATICVARIABLES>")
	b.WriteString("<TDL>")
	b.WriteString("<TDLMESSAGE>")
	b.WriteString(`<COLLECTION NAME="` + xmlEscape(spec.collectionName) + `" ISMODIFY="No">`)
	b.WriteString("<TYPE>" + xmlEscape(spec.tallyType) + "</TYPE>")
	b.WriteString("<FETCH>" + xmlEscape(strings.Join(spec.fetchFields, ", ")) + "</FETCH>")
	b.WriteString("</COLLECTION>")
	b.WriteString("</TDLMESSAGE>")
	b.WriteString("</TDL>")
	b.WriteString("</DESC>")
	b.WriteString("</BODY>")
	b.WriteString("</ENVELOPE>")
	return b.String(), nil
}

func xmlEscape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
