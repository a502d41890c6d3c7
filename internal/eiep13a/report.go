package eiep13a

import (
	"fmt"
	"time"

	"github.com/georgesolomos/eiep/internal/eiep"
	"github.com/georgesolomos/eiep/internal/util"
)

const (
	FileType         = eiep.FileTypeICPCONS
	DefaultVersion   = "1.1"
	NumHeaderColumns = 11
)

var SupportedVersions = []string{"1.1"}

// Report is the ICPCONS header. It adds the reporting period to the shared envelope.
type Report struct {
	eiep.Envelope
	reportStartDate time.Time
	reportEndDate   time.Time
}

func NewReport() *Report {
	today := util.Today()
	return &Report{
		Envelope:        eiep.NewEnvelope(DefaultVersion, SupportedVersions...),
		reportStartDate: today,
		reportEndDate:   today,
	}
}

func (r *Report) FileType() string {
	return FileType
}

func (r *Report) ReportStartDate() time.Time {
	return r.reportStartDate
}

func (r *Report) SetReportStartDate(date time.Time) *Report {
	r.reportStartDate = util.Midnight(date)
	return r
}

func (r *Report) ReportEndDate() time.Time {
	return r.reportEndDate
}

func (r *Report) SetReportEndDate(date time.Time) *Report {
	r.reportEndDate = util.Midnight(date)
	return r
}

func (r *Report) ToRow() []string {
	c := r.Encode()
	return []string{
		eiep.HeaderMarker,
		FileType,
		c.Version,
		c.Sender,
		c.OnBehalfOf,
		c.Recipient,
		c.ReportDate,
		c.Identifier,
		c.NumRecords,
		eiep.FormatDate(r.reportStartDate),
		eiep.FormatDate(r.reportEndDate),
	}
}

// FromRow validates an HDR row and, only if every check passes, replaces the
// report's attributes with it.
func (r *Report) FromRow(row eiep.Row) error {
	if err := eiep.CheckColumns(eiep.HeaderMarker, row, NumHeaderColumns); err != nil {
		return err
	}
	if err := eiep.CheckMarker("Record type", eiep.HeaderMarker, row.String(0)); err != nil {
		return err
	}
	if err := eiep.CheckMarker("File type", FileType, row.String(1)); err != nil {
		return err
	}
	envelope, err := r.Envelope.Decode(eiep.EnvelopeColumns{
		Version:    row.String(2),
		Sender:     row.String(3),
		OnBehalfOf: row.String(4),
		Recipient:  row.String(5),
		ReportDate: row.String(6),
		Identifier: row.String(7),
		NumRecords: row.String(8),
	})
	if err != nil {
		return err
	}
	start, err := eiep.ParseDate("report start date", row.String(9))
	if err != nil {
		return err
	}
	end, err := eiep.ParseDate("report end date", row.String(10))
	if err != nil {
		return err
	}

	r.Envelope = envelope
	r.reportStartDate = start
	r.reportEndDate = end
	return nil
}

func ParseReport(row eiep.Row) (*Report, error) {
	r := NewReport()
	if err := r.FromRow(row); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Report) FileName() string {
	return fmt.Sprintf("%s_%s_%s_%s.txt", r.Sender(), r.Recipient(), FileType, r.Identifier())
}

func ValidateFilename(name string) bool {
	return eiep.ValidateFilename(name, FileType)
}
