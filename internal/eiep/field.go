package eiep

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

const (
	NullColumn    = "null"
	DecimalPlaces = 2

	DateLayout     = "02/01/2006"
	DateTimeLayout = "02/01/2006 15:04:05"
	TimeLayout     = "15:04:05"
	MonthLayout    = "200601"
	FileDateLayout = "20060102"
)

// Field is one cleaned column. Null is set when the column held the null token.
type Field struct {
	Value string
	Null  bool
}

// Row is a cleaned input line.
type Row []Field

// CleanRow trims every column and maps the null token to an absent field.
func CleanRow(columns []string) Row {
	row := make(Row, len(columns))
	for i, column := range columns {
		value, ok := ParseNullable(column)
		row[i] = Field{Value: value, Null: !ok}
	}
	return row
}

func (r Row) Len() int {
	return len(r)
}

// String returns the text of column i, or "" for an absent column.
func (r Row) String(i int) string {
	if i < 0 || i >= len(r) || r[i].Null {
		return ""
	}
	return r[i].Value
}

// ParseNullable trims text and reports false when it is the null token, in any case.
func ParseNullable(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if strings.EqualFold(text, NullColumn) {
		return "", false
	}
	return text, true
}

// FormatDecimal renders a value with exactly two fractional digits, or the null token.
func FormatDecimal(value decimal.NullDecimal) string {
	if !value.Valid {
		return NullColumn
	}
	return value.Decimal.StringFixed(DecimalPlaces)
}

// FormatRawDecimal renders a value without fixing the number of fractional digits.
func FormatRawDecimal(value decimal.NullDecimal) string {
	if !value.Valid {
		return NullColumn
	}
	return value.Decimal.String()
}

// ParseDecimal reads a nullable numeric column. Absent and empty columns are both null.
func ParseDecimal(name string, field Field) (decimal.NullDecimal, error) {
	if field.Null || field.Value == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(field.Value)
	if err != nil {
		return decimal.NullDecimal{}, domainError(name, field.Value, "expected a decimal number")
	}
	return decimal.NewNullDecimal(d), nil
}

// StripWhitespace removes all whitespace, not just the leading and trailing runs.
func StripWhitespace(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
}

// Truncate keeps the first maxLen characters of text.
func Truncate(text string, maxLen int) string {
	if maxLen < 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen])
}

// Dates and times in these files have no zone. They are parsed as UTC and never converted.

func ParseDate(name, text string) (time.Time, error) {
	t, err := time.Parse(DateLayout, text)
	if err != nil {
		return time.Time{}, domainError(name, text, "expected DD/MM/YYYY")
	}
	return t, nil
}

func ParseDateTime(name, text string) (time.Time, error) {
	t, err := time.Parse(DateTimeLayout, text)
	if err != nil {
		return time.Time{}, domainError(name, text, "expected DD/MM/YYYY HH:MM:SS")
	}
	return t, nil
}

func ParseTime(name, text string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, text)
	if err != nil {
		return time.Time{}, domainError(name, text, "expected HH:MM:SS")
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// CheckColumns fails with a StructuralError when row doesn't have exactly expected columns.
func CheckColumns(record string, row Row, expected int) error {
	if row.Len() != expected {
		return &StructuralError{Record: record, Expected: expected, Found: row.Len()}
	}
	return nil
}

// CheckMarker compares a tag column against the expected constant.
func CheckMarker(column, expected, found string) error {
	if found != expected {
		return &MarkerError{Column: column, Expected: expected, Found: found}
	}
	return nil
}
