package eiep

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanRow(t *testing.T) {
	row := CleanRow([]string{" DET ", "NULL", "null", "Null", "", "  x y "})

	require.Equal(t, 6, row.Len())
	assert.Equal(t, Field{Value: "DET"}, row[0])
	assert.True(t, row[1].Null)
	assert.True(t, row[2].Null)
	assert.True(t, row[3].Null)
	assert.Equal(t, Field{Value: ""}, row[4])
	assert.Equal(t, "x y", row.String(5))
	assert.Equal(t, "", row.String(1))
	assert.Equal(t, "", row.String(-1))
	assert.Equal(t, "", row.String(6))
}

func TestParseNullable(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{in: "abc", want: "abc", valid: true},
		{in: " abc\t", want: "abc", valid: true},
		{in: "null", want: "", valid: false},
		{in: " NULL ", want: "", valid: false},
		{in: "nullable", want: "nullable", valid: true},
		{in: "", want: "", valid: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNullable(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, ok)
		})
	}
}

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		name  string
		value decimal.NullDecimal
		want  string
	}{
		{name: "null", value: decimal.NullDecimal{}, want: "null"},
		{name: "integer", value: decimal.NewNullDecimal(decimal.NewFromInt(1)), want: "1.00"},
		{name: "rounds half up", value: decimal.NewNullDecimal(decimal.RequireFromString("1.005")), want: "1.01"},
		{name: "rounds down", value: decimal.NewNullDecimal(decimal.RequireFromString("2.344")), want: "2.34"},
		{name: "negative", value: decimal.NewNullDecimal(decimal.RequireFromString("-0.5")), want: "-0.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDecimal(tt.value))
		})
	}
}

func TestFormatRawDecimal(t *testing.T) {
	assert.Equal(t, "null", FormatRawDecimal(decimal.NullDecimal{}))
	assert.Equal(t, "1", FormatRawDecimal(decimal.NewNullDecimal(decimal.NewFromInt(1))))
	assert.Equal(t, "1.234", FormatRawDecimal(decimal.NewNullDecimal(decimal.RequireFromString("1.234"))))
}

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal("active energy", Field{Value: "12.5"})
	require.NoError(t, err)
	require.True(t, d.Valid)
	assert.True(t, d.Decimal.Equal(decimal.RequireFromString("12.5")))

	d, err = ParseDecimal("active energy", Field{Null: true})
	require.NoError(t, err)
	assert.False(t, d.Valid)

	d, err = ParseDecimal("active energy", Field{Value: ""})
	require.NoError(t, err)
	assert.False(t, d.Valid)

	_, err = ParseDecimal("active energy", Field{Value: "abc"})
	require.ErrorIs(t, err, ErrDomain)
	assert.Equal(t, "Invalid active energy abc, expected a decimal number", err.Error())
}

func TestStripWhitespace(t *testing.T) {
	assert.Equal(t, "0000012345AB123", StripWhitespace(" 00000 12345\tAB123\n"))
	assert.Equal(t, "", StripWhitespace(" \t "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Comp", Truncate("Company", 4))
	assert.Equal(t, "Co", Truncate("Co", 4))
	assert.Equal(t, "", Truncate("Co", -1))
	assert.Equal(t, "Māor", Truncate("Māori", 4))
}

func TestParseDates(t *testing.T) {
	d, err := ParseDate("date", "27/04/2019")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, time.April, 27, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "27/04/2019", FormatDate(d))

	_, err = ParseDate("date", "2019-04-27")
	require.ErrorIs(t, err, ErrDomain)
	assert.Equal(t, "Invalid date 2019-04-27, expected DD/MM/YYYY", err.Error())

	dt, err := ParseDateTime("read period start", "27/04/2019 13:30:05")
	require.NoError(t, err)
	assert.Equal(t, "27/04/2019 13:30:05", FormatDateTime(dt))

	_, err = ParseDateTime("read period start", "27/04/2019")
	assert.ErrorIs(t, err, ErrDomain)

	_, err = ParseTime("report time", "25:00:00")
	assert.ErrorIs(t, err, ErrDomain)
}

func TestCheckColumns(t *testing.T) {
	row := CleanRow([]string{"DET", "a"})
	require.NoError(t, CheckColumns(DetailMarker, row, 2))

	err := CheckColumns(DetailMarker, row, 11)
	require.ErrorIs(t, err, ErrStructure)
	assert.Equal(t, "Expected 11 columns but found 2", err.Error())
	var structErr *StructuralError
	require.ErrorAs(t, err, &structErr)
	assert.Equal(t, DetailMarker, structErr.Record)
}

func TestCheckMarker(t *testing.T) {
	require.NoError(t, CheckMarker("Record type", DetailMarker, "DET"))

	err := CheckMarker("Record type", DetailMarker, "ABC")
	require.ErrorIs(t, err, ErrMarker)
	assert.Equal(t, "Record type ABC is invalid (expecting DET)", err.Error())
}
