package client

import (
	"encoding/json"
	"strconv"
	"strings"

	"philately/catalog/internal/domain"
)

// RawStamp tolerates the upstream API's heterogeneous shapes: alternate key
// spellings for the same field, numbers that arrive as strings, and an
// embedded details document that may be an object or a serialized string.
type RawStamp struct {
	ID          string `json:"id"`
	StampID     string `json:"stampId"`
	Name        string `json:"name"`
	StampName   string `json:"stampName"`
	SeriesName  string `json:"seriesName"`
	Series      string `json:"series"`
	Country     string `json:"country"`
	CountryName string `json:"countryName"`
	CountryCode string `json:"countryCode"`

	IssueYear         any `json:"issueYear"`
	DenominationValue any `json:"denominationValue"`

	DenominationSymbol   string `json:"denominationSymbol"`
	DenominationCurrency string `json:"denominationCurrency"`
	Color                string `json:"color"`
	PaperType            string `json:"paperType"`
	CatalogNumber        string `json:"catalogNumber"`
	CatalogName          string `json:"catalogName"`
	StampGroupID         string `json:"stampGroupId"`
	Rarity               string `json:"rarity"`
	Condition            string `json:"condition"`
	StampImageURL        string `json:"stampImageUrl"`
	ImageURL             string `json:"imageUrl"`

	StampDetailsJSON json.RawMessage `json:"stampDetailsJson"`

	EstimatedMarketValue any `json:"estimatedMarketValue"`
	ActualPrice          any `json:"actualPrice"`
}

// Normalize maps a raw API stamp onto the canonical record shape. It is pure
// and total: every missing or malformed field degrades to its sentinel
// default, never to an error.
func Normalize(raw RawStamp) domain.StampRecord {
	detailsJSON := rawDetailsString(raw.StampDetailsJSON)

	rec := domain.StampRecord{
		ID:                   firstNonEmpty(raw.ID, raw.StampID),
		Name:                 firstNonEmpty(raw.Name, raw.StampName),
		SeriesName:           firstNonEmpty(raw.SeriesName, raw.Series, domain.UnknownSeries),
		Country:              firstNonEmpty(raw.Country, raw.CountryName, domain.UnknownCountry),
		CountryCode:          raw.CountryCode,
		IssueYear:            coerceInt(raw.IssueYear),
		DenominationValue:    coerceFloat(raw.DenominationValue),
		DenominationSymbol:   raw.DenominationSymbol,
		DenominationCurrency: raw.DenominationCurrency,
		Color:                raw.Color,
		PaperType:            raw.PaperType,
		CatalogNumber:        raw.CatalogNumber,
		CatalogName:          raw.CatalogName,
		StampGroupID:         raw.StampGroupID,
		Rarity:               raw.Rarity,
		Condition:            raw.Condition,
		StampImageURL:        firstNonEmpty(raw.StampImageURL, raw.ImageURL, domain.PlaceholderImageURL),
		DetailsJSON:          detailsJSON,
		Details:              domain.ParseDetails(detailsJSON),
	}

	if v := coerceFloat(raw.EstimatedMarketValue); v != 0 {
		rec.EstimatedMarketValue = &v
	}
	if v := coerceFloat(raw.ActualPrice); v != 0 {
		rec.ActualPrice = &v
	}
	return rec
}

// rawDetailsString accepts the details field either as an inline JSON object
// or as a quoted string containing serialized JSON.
func rawDetailsString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func coerceInt(v any) *int {
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return &i
		}
	}
	return nil
}

func coerceFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	}
	return 0
}
