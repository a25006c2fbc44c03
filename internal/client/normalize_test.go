package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"philately/catalog/internal/domain"
)

func TestNormalizeSentinelDefaults(t *testing.T) {
	rec := Normalize(RawStamp{ID: "s1"})

	assert.Equal(t, "s1", rec.ID)
	assert.Equal(t, domain.UnknownSeries, rec.SeriesName)
	assert.Equal(t, domain.UnknownCountry, rec.Country)
	assert.Nil(t, rec.IssueYear)
	assert.Equal(t, domain.PlaceholderImageURL, rec.StampImageURL)
	assert.Equal(t, domain.Unknown, rec.Details.Perforation)
	assert.Equal(t, domain.Unknown, rec.Details.Watermark)
	assert.Nil(t, rec.EstimatedMarketValue)
}

func TestNormalizeAlternateKeys(t *testing.T) {
	rec := Normalize(RawStamp{
		StampID:     "s2",
		StampName:   "Penny Black",
		Series:      "Line Engraved",
		CountryName: "Great Britain",
		ImageURL:    "/img/s2.png",
	})

	assert.Equal(t, "s2", rec.ID)
	assert.Equal(t, "Penny Black", rec.Name)
	assert.Equal(t, "Line Engraved", rec.SeriesName)
	assert.Equal(t, "Great Britain", rec.Country)
	assert.Equal(t, "/img/s2.png", rec.StampImageURL)
}

func TestNormalizeCoercesStringNumbers(t *testing.T) {
	var raw RawStamp
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "s3",
		"issueYear": "1935",
		"denominationValue": "2.5",
		"estimatedMarketValue": "12"
	}`), &raw))

	rec := Normalize(raw)
	require.NotNil(t, rec.IssueYear)
	assert.Equal(t, 1935, *rec.IssueYear)
	assert.Equal(t, 2.5, rec.DenominationValue)
	require.NotNil(t, rec.EstimatedMarketValue)
	assert.Equal(t, 12.0, *rec.EstimatedMarketValue)
}

func TestNormalizeNumericYear(t *testing.T) {
	var raw RawStamp
	require.NoError(t, json.Unmarshal([]byte(`{"id":"s4","issueYear":1840}`), &raw))

	rec := Normalize(raw)
	require.NotNil(t, rec.IssueYear)
	assert.Equal(t, 1840, *rec.IssueYear)
}

func TestNormalizeMalformedDetailsJSON(t *testing.T) {
	var raw RawStamp
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "s5",
		"stampDetailsJson": "{not valid json"
	}`), &raw))

	rec := Normalize(raw)
	assert.Equal(t, domain.Unknown, rec.Details.Perforation)
	assert.Equal(t, domain.Unknown, rec.Details.PrintingMethod)
	assert.Equal(t, domain.Unknown, rec.Details.ErrorType)
}

func TestNormalizeDetailsAsStringOrObject(t *testing.T) {
	var asString RawStamp
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "s6",
		"stampDetailsJson": "{\"perforation\":\"14\",\"watermark\":\"Crown\"}"
	}`), &asString))

	var asObject RawStamp
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "s6",
		"stampDetailsJson": {"perforation":"14","watermark":"Crown"}
	}`), &asObject))

	for _, raw := range []RawStamp{asString, asObject} {
		rec := Normalize(raw)
		assert.Equal(t, "14", rec.Details.Perforation)
		assert.Equal(t, "Crown", rec.Details.Watermark)
		assert.Equal(t, domain.Unknown, rec.Details.Designer)
	}
}

func TestNormalizeNeverPanicsOnEmptyInput(t *testing.T) {
	assert.NotPanics(t, func() {
		rec := Normalize(RawStamp{})
		assert.Equal(t, domain.UnknownSeries, rec.SeriesName)
	})
}
