package csvcodec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/marketing-console/internal/domain"
)

var testCols = []domain.Column{
	{Key: "coupon_code", Header: "Coupon Code", Type: domain.TypeString},
	{Key: "discount_amount", Header: "Discount Amount", Type: domain.TypeNumber},
	{Key: "usage_limit", Header: "Usage Limit", Type: domain.TypeInteger},
	{Key: "stackable", Header: "Stackable", Type: domain.TypeBoolean},
	{Key: "expiry_date", Header: "Expiry Date", Type: domain.TypeDate},
	{Key: "remarks", Header: "Remarks", Type: domain.TypeString},
}

func TestDecode(t *testing.T) {
	text := "Coupon Code,Discount Amount,Usage Limit,Stackable,Expiry Date,Remarks\n" +
		"SAVE10,10.5,100,true,2026-12-31,plain\n" +
		"FREESHIP,,,no,,\n"

	rows, err := Decode(text, testCols)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "SAVE10", rows[0]["coupon_code"])
	assert.Equal(t, 10.5, rows[0]["discount_amount"])
	assert.Equal(t, int64(100), rows[0]["usage_limit"])
	assert.Equal(t, true, rows[0]["stackable"])
	assert.Equal(t, "2026-12-31", rows[0]["expiry_date"])

	// Empty cells are absent, not zero values; "no" is not a truthy token.
	assert.Equal(t, "FREESHIP", rows[1]["coupon_code"])
	assert.False(t, rows[1].Has("discount_amount"))
	assert.False(t, rows[1].Has("usage_limit"))
	assert.Equal(t, false, rows[1]["stackable"])
	assert.False(t, rows[1].Has("expiry_date"))
}

func TestDecodeHeaderMatching(t *testing.T) {
	// Keys match too, case-insensitively; unknown headers are ignored.
	text := "COUPON_CODE,usage limit,Mystery Column\nSAVE10,50,whatever\n"
	rows, err := Decode(text, testCols)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "SAVE10", rows[0]["coupon_code"])
	assert.Equal(t, int64(50), rows[0]["usage_limit"])
	assert.Len(t, rows[0], 2, "unmatched header is dropped")
}

func TestDecodeBooleanTokens(t *testing.T) {
	for cell, want := range map[string]bool{
		"true": true, "1": true, "yes": true,
		"false": false, "0": false, "TRUE": false, "maybe": false,
	} {
		rows, err := Decode("Stackable\n"+cell+"\n", testCols)
		require.NoError(t, err)
		assert.Equal(t, want, rows[0]["stackable"], "cell %q", cell)
	}
}

func TestDecodeKeepsUnparseableNumbers(t *testing.T) {
	// Bad numeric cells survive as raw strings so validation can name them.
	text := "Usage Limit,Discount Amount\nlots,cheap\n"
	rows, err := Decode(text, testCols)
	require.NoError(t, err)
	assert.Equal(t, "lots", rows[0]["usage_limit"])
	assert.Equal(t, "cheap", rows[0]["discount_amount"])
}

func TestDecodeQuotedFields(t *testing.T) {
	text := "Coupon Code,Remarks\n" +
		`SAVE10,"has, comma and ""quotes"" and` + "\nnewline\"\n"
	rows, err := Decode(text, testCols)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "has, comma and \"quotes\" and\nnewline", rows[0]["remarks"])
}

func TestDecodeFormatErrors(t *testing.T) {
	var fe *FormatError

	_, err := Decode("", testCols)
	require.ErrorAs(t, err, &fe)

	_, err = Decode("Coupon Code,Remarks\n", testCols)
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Msg, "header row")

	_, err = Decode("Coupon Code\n\"unterminated\n", testCols)
	require.ErrorAs(t, err, &fe)
}

func TestEncodeRoundTrip(t *testing.T) {
	rows := []domain.Record{
		{
			"coupon_code":     "SAVE10",
			"discount_amount": 12.5,
			"usage_limit":     int64(100),
			"stackable":       true,
			"expiry_date":     "2026-12-31",
			"remarks":         `note, with "punctuation"`,
		},
		{
			"coupon_code": "FREESHIP",
		},
	}

	text, err := Encode(rows, testCols)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Coupon Code,Discount Amount,Usage Limit,Stackable,Expiry Date,Remarks\n"))

	decoded, err := Decode(text, testCols)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, rows[0]["coupon_code"], decoded[0]["coupon_code"])
	assert.Equal(t, rows[0]["discount_amount"], decoded[0]["discount_amount"])
	assert.Equal(t, rows[0]["usage_limit"], decoded[0]["usage_limit"])
	assert.Equal(t, rows[0]["stackable"], decoded[0]["stackable"])
	assert.Equal(t, rows[0]["remarks"], decoded[0]["remarks"])
	assert.False(t, decoded[1].Has("discount_amount"))
}
