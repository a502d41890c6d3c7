package eiep13a

import (
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/shopspring/decimal"

	"github.com/georgesolomos/eiep/internal/eiep"
)

const NumColumns = 14

// Widths of the fixed-width text columns in the legacy layout
const (
	AuthorisationCodeWidth = 20
	IcpIdentifierWidth     = 15
	ResponseCodeWidth      = 3
	DstAdjustmentWidth     = 4
	MeteringComponentWidth = 30
)

// The distributor's answer to a consumption information request
type ResponseCode string

const (
	ResponseAccepted            ResponseCode = "000"
	ResponseRejectedNoAddress   ResponseCode = "001"
	ResponseRejectedNoICP       ResponseCode = "002"
	ResponseRejectedNoCustomer  ResponseCode = "003"
	ResponseRejectedNoAuthority ResponseCode = "004"
)

var responseCodes = mapset.NewSet(
	ResponseAccepted,
	ResponseRejectedNoAddress,
	ResponseRejectedNoICP,
	ResponseRejectedNoCustomer,
	ResponseRejectedNoAuthority,
)

type ReadStatus string

const (
	ReadActual    ReadStatus = "RD"
	ReadEstimated ReadStatus = "ES"
)

var readStatuses = mapset.NewSet(ReadActual, ReadEstimated)

// DetailRecord is one register read for an ICP over a read period.
type DetailRecord struct {
	authorisationCode  string
	icpIdentifier      string
	responseCode       ResponseCode
	nzDstAdjustment    string
	meteringComponent  string
	flowDirection      eiep.FlowDirection
	registerCode       string
	availabilityPeriod string
	readPeriodStart    time.Time
	readPeriodEnd      time.Time
	readStatus         ReadStatus
	activeEnergy       decimal.NullDecimal
	reactiveEnergy     decimal.NullDecimal
}

func NewDetailRecord() *DetailRecord {
	now := time.Now().Truncate(time.Second)
	return &DetailRecord{
		readPeriodStart: now,
		readPeriodEnd:   now,
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
	record.SetAuthorisationCode(row.String(1)).
		SetIcpIdentifier(row.String(2)).
		SetNzDstAdjustment(row.String(4)).
		SetMeteringComponent(row.String(5)).
		SetRegisterCode(row.String(7)).
		SetAvailabilityPeriod(row.String(8))
	if err := record.SetResponseCode(ResponseCode(row.String(3))); err != nil {
		return nil, err
	}
	if err := record.SetFlowDirection(eiep.FlowDirection(row.String(6))); err != nil {
		return nil, err
	}
	start, err := eiep.ParseDateTime("read period start", row.String(9))
	if err != nil {
		return nil, err
	}
	end, err := eiep.ParseDateTime("read period end", row.String(10))
	if err != nil {
		return nil, err
	}
	record.SetReadPeriodStart(start).SetReadPeriodEnd(end)
	if err := record.SetReadStatus(ReadStatus(row.String(11))); err != nil {
		return nil, err
	}
	if record.activeEnergy, err = eiep.ParseDecimal("active energy", row[12]); err != nil {
		return nil, err
	}
	if record.reactiveEnergy, err = eiep.ParseDecimal("reactive energy", row[13]); err != nil {
		return nil, err
	}
	return record, nil
}

// ToRow renders the record in column order. Energy values are written as they are held,
// without fixing the number of decimal places.
func (r *DetailRecord) ToRow() []string {
	return []string{
		eiep.DetailMarker,
		eiep.Truncate(r.authorisationCode, AuthorisationCodeWidth),
		eiep.Truncate(r.icpIdentifier, IcpIdentifierWidth),
		eiep.Truncate(string(r.responseCode), ResponseCodeWidth),
		eiep.Truncate(r.nzDstAdjustment, DstAdjustmentWidth),
		eiep.Truncate(r.meteringComponent, MeteringComponentWidth),
		string(r.flowDirection),
		r.registerCode,
		r.availabilityPeriod,
		eiep.FormatDateTime(r.readPeriodStart),
		eiep.FormatDateTime(r.readPeriodEnd),
		string(r.readStatus),
		eiep.FormatRawDecimal(r.activeEnergy),
		eiep.FormatRawDecimal(r.reactiveEnergy),
	}
}

func (r *DetailRecord) AuthorisationCode() string {
	return r.authorisationCode
}

func (r *DetailRecord) SetAuthorisationCode(code string) *DetailRecord {
	r.authorisationCode = code
	return r
}

func (r *DetailRecord) IcpIdentifier() string {
	return r.icpIdentifier
}

func (r *DetailRecord) SetIcpIdentifier(icp string) *DetailRecord {
	r.icpIdentifier = eiep.StripWhitespace(icp)
	return r
}

func (r *DetailRecord) ResponseCode() ResponseCode {
	return r.responseCode
}

func (r *DetailRecord) SetResponseCode(code ResponseCode) error {
	if err := eiep.CheckDomain("response code", responseCodes, code); err != nil {
		return err
	}
	r.responseCode = code
	return nil
}

func (r *DetailRecord) NzDstAdjustment() string {
	return r.nzDstAdjustment
}

func (r *DetailRecord) SetNzDstAdjustment(flag string) *DetailRecord {
	r.nzDstAdjustment = flag
	return r
}

func (r *DetailRecord) MeteringComponent() string {
	return r.meteringComponent
}

func (r *DetailRecord) SetMeteringComponent(component string) *DetailRecord {
	r.meteringComponent = component
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

func (r *DetailRecord) RegisterCode() string {
	return r.registerCode
}

func (r *DetailRecord) SetRegisterCode(code string) *DetailRecord {
	r.registerCode = code
	return r
}

func (r *DetailRecord) AvailabilityPeriod() string {
	return r.availabilityPeriod
}

func (r *DetailRecord) SetAvailabilityPeriod(period string) *DetailRecord {
	r.availabilityPeriod = period
	return r
}

func (r *DetailRecord) ReadPeriodStart() time.Time {
	return r.readPeriodStart
}

func (r *DetailRecord) SetReadPeriodStart(start time.Time) *DetailRecord {
	r.readPeriodStart = start
	return r
}

func (r *DetailRecord) ReadPeriodEnd() time.Time {
	return r.readPeriodEnd
}

func (r *DetailRecord) SetReadPeriodEnd(end time.Time) *DetailRecord {
	r.readPeriodEnd = end
	return r
}

func (r *DetailRecord) ReadStatus() ReadStatus {
	return r.readStatus
}

func (r *DetailRecord) SetReadStatus(status ReadStatus) error {
	if err := eiep.CheckDomain("read status", readStatuses, status); err != nil {
		return err
	}
	r.readStatus = status
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
