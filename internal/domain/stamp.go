package domain

import "encoding/json"

// Sentinel values used whenever upstream data is missing or malformed.
// Grouping and display code must always see a non-empty string.
const (
	UnknownSeries       = "Unknown Series"
	UnknownCountry      = "Unknown Country"
	UnknownYear         = "Unknown Year"
	UnknownColor        = "Unknown Color"
	UnknownPaper        = "Unknown Paper"
	UnknownDenomination = "Unknown Denomination"
	UnknownCatalog      = "Unknown Catalog"
	UnknownRarity       = "Unknown Rarity"
	Unknown             = "Unknown"

	// PlaceholderImageURL is substituted when a record carries no image.
	PlaceholderImageURL = "/images/stamp-placeholder.png"
)

// StampRecord is the canonical unit of catalog data. Records are created by
// normalization (client package) or the bundled seed dataset and are immutable
// once stored; updates are full replace-by-id.
type StampRecord struct {
	ID                   string       `json:"id"`
	Name                 string       `json:"name"`
	SeriesName           string       `json:"seriesName"`
	Country              string       `json:"country"`
	CountryCode          string       `json:"countryCode"`
	IssueYear            *int         `json:"issueYear"`
	DenominationValue    float64      `json:"denominationValue"`
	DenominationSymbol   string       `json:"denominationSymbol"`
	DenominationCurrency string       `json:"denominationCurrency"`
	Color                string       `json:"color"`
	PaperType            string       `json:"paperType"`
	CatalogNumber        string       `json:"catalogNumber"`
	CatalogName          string       `json:"catalogName"`
	StampGroupID         string       `json:"stampGroupId"`
	Rarity               string       `json:"rarity"`
	Condition            string       `json:"condition"`
	StampImageURL        string       `json:"stampImageUrl"`
	DetailsJSON          string       `json:"stampDetailsJson,omitempty"`
	Details              StampDetails `json:"details"`
	EstimatedMarketValue *float64     `json:"estimatedMarketValue"`
	ActualPrice          *float64     `json:"actualPrice"`
}

// StampDetails carries the optional sub-document embedded in a record's
// details JSON. Every field defaults to "Unknown" when absent.
type StampDetails struct {
	Perforation       string `json:"perforation"`
	Watermark         string `json:"watermark"`
	PrintingMethod    string `json:"printingMethod"`
	Designer          string `json:"designer"`
	PostalHistoryType string `json:"postalHistoryType"`
	ErrorType         string `json:"errorType"`
	ProofType         string `json:"proofType"`
	EssayType         string `json:"essayType"`
}

// ParseDetails decodes an embedded details JSON string. It never fails: a
// malformed or empty string yields all-"Unknown" sub-fields.
func ParseDetails(raw string) StampDetails {
	d := StampDetails{}
	if raw != "" {
		// Decode errors are intentionally swallowed; missing fields fall
		// through to the sentinel fill below.
		_ = json.Unmarshal([]byte(raw), &d)
	}
	fill := func(s *string) {
		if *s == "" {
			*s = Unknown
		}
	}
	fill(&d.Perforation)
	fill(&d.Watermark)
	fill(&d.PrintingMethod)
	fill(&d.Designer)
	fill(&d.PostalHistoryType)
	fill(&d.ErrorType)
	fill(&d.ProofType)
	fill(&d.EssayType)
	return d
}
