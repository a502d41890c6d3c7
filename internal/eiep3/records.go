package eiep3

import (
	"strconv"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/shopspring/decimal"

	"github.com/georgesolomos/eiep/internal/eiep"
	"github.com/georgesolomos/eiep/internal/util"
)

const NumColumns = 11

// Trading periods are documented as 1 - 50 but 0 has always been accepted.
const (
	MinTradingPeriod = 0
	MaxTradingPeriod = 50
)

// Whether a half-hourly reading is final or estimated
type ReadingType string

const (
	ReadingFinal    ReadingType = "F"
	ReadingEstimate ReadingType = "E"
)

var readingTypes = mapset.NewSet(ReadingFinal, ReadingEstimate)

func IsValidReadingType(val string) bool {
	return readingTypes.Contains(ReadingType(val))
}

// DetailRecord is one half-hourly reading for an ICP and metering stream.
type DetailRecord struct {
	icpIdentifier    string
	streamIdentifier string
	readingType      ReadingType
	date             time.Time
	tradingPeriod    int
	activeEnergy     decimal.NullDecimal
	reactiveEnergy   decimal.NullDecimal
	apparentEnergy   decimal.NullDecimal
	flowDirection    eiep.FlowDirection
	// An empty stream type is written as null
	streamType string
}

func NewDetailRecord() *DetailRecord {
	return &DetailRecord{
		date: util.Today(),
	}
}

// ParseDetailRecord builds a record from one cleaned row. It returns either a fully
// valid record or an error, never a partial record.
func ParseDetailRecord(row eiep.Row) (*DetailRecord, error) {
	if err := eiep.CheckColumns(eiep.DetailMarker, row, NumColumns); err != nil {
		return nil, err
	}
	if err := eiep.CheckMarker("Record type", eiep.DetailMarker, row.String(0)); err != nil {
		return nil, err
	}

	record := NewDetailRecord()
	record.SetIcpIdentifier(row.String(1)).
		SetStreamIdentifier(row.String(2)).
		SetStreamType(row.String(10))
	if err := record.SetReadingType(ReadingType(row.String(3))); err != nil {
		return nil, err
	}
	date, err := eiep.ParseDate("date", row.String(4))
	if err != nil {
		return nil, err
	}
	record.SetDate(date)
	tradingPeriod, err := strconv.Atoi(row.String(5))
	if err != nil {
		return nil, &eiep.DomainError{Field: "trading period", Value: row.String(5), Reason: "expected an integer"}
	}
	if err := record.SetTradingPeriod(tradingPeriod); err != nil {
		return nil, err
	}
	if record.activeEnergy, err = eiep.ParseDecimal("active energy", row[6]); err != nil {
		return nil, err
	}
	if record.reactiveEnergy, err = eiep.ParseDecimal("reactive energy", row[7]); err != nil {
		return nil, err
	}
	if record.apparentEnergy, err = eiep.ParseDecimal("apparent energy", row[8]); err != nil {
		return nil, err
	}
	if err := record.SetFlowDirection(eiep.FlowDirection(row.String(9))); err != nil {
		return nil, err
	}
	return record, nil
}

// ToRow renders the record in column order.
func (r *DetailRecord) ToRow() []string {
	streamType := r.streamType
	if streamType == "" {
		streamType = eiep.NullColumn
	}
	return []string{
		eiep.DetailMarker,
		r.icpIdentifier,
		r.streamIdentifier,
		string(r.readingType),
		eiep.FormatDate(r.date),
		strconv.Itoa(r.tradingPeriod),
		eiep.FormatDecimal(r.activeEnergy),
		eiep.FormatDecimal(r.reactiveEnergy),
		eiep.FormatDecimal(r.apparentEnergy),
		string(r.flowDirection),
		streamType,
	}
}

func (r *DetailRecord) IcpIdentifier() string {
	return r.icpIdentifier
}

// SetIcpIdentifier strips all whitespace, which some source systems embed in ICPs.
func (r *DetailRecord) SetIcpIdentifier(icp string) *DetailRecord {
	r.icpIdentifier = eiep.StripWhitespace(icp)
	return r
}

func (r *DetailRecord) StreamIdentifier() string {
	return r.streamIdentifier
}

func (r *DetailRecord) SetStreamIdentifier(stream string) *DetailRecord {
	r.streamIdentifier = eiep.StripWhitespace(stream)
	return r
}

func (r *DetailRecord) ReadingType() ReadingType {
	return r.readingType
}

func (r *DetailRecord) SetReadingType(readingType ReadingType) error {
	if !IsValidReadingType(string(readingType)) {
		return &eiep.DomainError{Field: "reading type", Value: string(readingType), Reason: "expected F or E"}
	}
	r.readingType = readingType
	return nil
}

func (r *DetailRecord) Date() time.Time {
	return r.date
}

// SetDate keeps only the calendar day of date.
func (r *DetailRecord) SetDate(date time.Time) *DetailRecord {
	if !util.IsMidnight(date) {
		date = util.Midnight(date)
	}
	r.date = date
	return r
}

func (r *DetailRecord) TradingPeriod() int {
	return r.tradingPeriod
}

func (r *DetailRecord) SetTradingPeriod(tradingPeriod int) error {
	if tradingPeriod < MinTradingPeriod || tradingPeriod > MaxTradingPeriod {
		return &eiep.DomainError{Field: "trading period", Value: strconv.Itoa(tradingPeriod), Reason: "expected 1 - 50"}
	}
	r.tradingPeriod = tradingPeriod
	return nil
}

func (r *DetailRecord) ActiveEnergy() decimal.NullDecimal {
	return r.activeEnergy
}

func (r *DetailRecord) SetActiveEnergy(energy decimal.NullDecimal) *DetailRecord {
	r.activeEnergy = energy
	return r
}

func (r *DetailRecord) ReactiveEnergy() decimal.NullDecimal {
	return r.reactiveEnergy
}

func (r *DetailRecord) SetReactiveEnergy(energy decimal.NullDecimal) *DetailRecord {
	r.reactiveEnergy = energy
	return r
}

func (r *DetailRecord) ApparentEnergy() decimal.NullDecimal {
	return r.apparentEnergy
}

func (r *DetailRecord) SetApparentEnergy(energy decimal.NullDecimal) *DetailRecord {
	r.apparentEnergy = energy
	return r
}

func (r *DetailRecord) FlowDirection() eiep.FlowDirection {
	return r.flowDirection
}

func (r *DetailRecord) SetFlowDirection(flow eiep.FlowDirection) error {
	if err := eiep.ValidateFlowDirection(flow); err != nil {
		return err
	}
	r.flowDirection = flow
	return nil
}

func (r *DetailRecord) StreamType() string {
	return r.streamType
}

func (r *DetailRecord) SetStreamType(streamType string) *DetailRecord {
	r.streamType = streamType
	return r
}
