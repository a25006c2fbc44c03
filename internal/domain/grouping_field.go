package domain

import "strconv"

// GroupingField is a grouping dimension selectable by the user. Each field is
// bound to a total accessor: it never fails and always returns a non-empty
// string, falling back to the field's "Unknown ..." sentinel.
type GroupingField string

func (f GroupingField) String() string {
	return string(f)
}

const (
	GroupBySeriesName     GroupingField = "seriesName"
	GroupByIssueYear      GroupingField = "issueYear"
	GroupByCountry        GroupingField = "country"
	GroupByColor          GroupingField = "color"
	GroupByPaperType      GroupingField = "paperType"
	GroupByDenomination   GroupingField = "denomination"
	GroupByCatalogName    GroupingField = "catalogName"
	GroupByRarity         GroupingField = "rarity"
	GroupByPerforation    GroupingField = "perforation"
	GroupByWatermark      GroupingField = "watermark"
	GroupByPrintingMethod GroupingField = "printingMethod"
	GroupByErrorType      GroupingField = "errorType"
)

// GroupingFields lists every valid field in display order.
var GroupingFields = []GroupingField{
	GroupBySeriesName,
	GroupByIssueYear,
	GroupByCountry,
	GroupByColor,
	GroupByPaperType,
	GroupByDenomination,
	GroupByCatalogName,
	GroupByRarity,
	GroupByPerforation,
	GroupByWatermark,
	GroupByPrintingMethod,
	GroupByErrorType,
}

// ParseGroupingField validates a user-supplied field name. Unknown names are
// rejected so callers can drop them silently (shared URLs may carry values
// from older builds).
func ParseGroupingField(s string) (GroupingField, bool) {
	for _, f := range GroupingFields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Accessor returns the group key for a record under this field. The switch is
// a closed mapping over all enum variants; an out-of-range field groups under
// the generic "Unknown" sentinel rather than failing.
func (f GroupingField) Accessor(s StampRecord) string {
	switch f {
	case GroupBySeriesName:
		return orUnknown(s.SeriesName, UnknownSeries)
	case GroupByIssueYear:
		if s.IssueYear == nil {
			return UnknownYear
		}
		return strconv.Itoa(*s.IssueYear)
	case GroupByCountry:
		return orUnknown(s.Country, UnknownCountry)
	case GroupByColor:
		return orUnknown(s.Color, UnknownColor)
	case GroupByPaperType:
		return orUnknown(s.PaperType, UnknownPaper)
	case GroupByDenomination:
		if s.DenominationValue == 0 && s.DenominationSymbol == "" {
			return UnknownDenomination
		}
		return FormatDenomination(s.DenominationValue, s.DenominationSymbol)
	case GroupByCatalogName:
		return orUnknown(s.CatalogName, UnknownCatalog)
	case GroupByRarity:
		return orUnknown(s.Rarity, UnknownRarity)
	case GroupByPerforation:
		return orUnknown(s.Details.Perforation, Unknown)
	case GroupByWatermark:
		return orUnknown(s.Details.Watermark, Unknown)
	case GroupByPrintingMethod:
		return orUnknown(s.Details.PrintingMethod, Unknown)
	case GroupByErrorType:
		return orUnknown(s.Details.ErrorType, Unknown)
	default:
		return Unknown
	}
}

// FormatDenomination renders a face value the way search and grouping expect
// it, e.g. "2d", "0.5c".
func FormatDenomination(value float64, symbol string) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + symbol
}

func orUnknown(v, sentinel string) string {
	if v == "" {
		return sentinel
	}
	return v
}
