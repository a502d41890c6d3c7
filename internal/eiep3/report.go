package eiep3

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/georgesolomos/eiep/internal/eiep"
)

const (
	FileType         = eiep.FileTypeICPHH
	DefaultVersion   = "10.0"
	NumHeaderColumns = 13
)

// SupportedVersions lists every ICPHH version this package accepts by default.
var SupportedVersions = []string{"10.0", "11.0"}

type UtilityType string

const (
	UtilityElectricity UtilityType = "E"
	UtilityGas         UtilityType = "G"
)

var utilityTypes = mapset.NewSet(UtilityElectricity, UtilityGas)

type FileStatus string

const (
	FileStatusInitial       FileStatus = "I"
	FileStatusReplacement   FileStatus = "R"
	FileStatusPartialUpdate FileStatus = "X"
)

var fileStatuses = mapset.NewSet(FileStatusInitial, FileStatusReplacement, FileStatusPartialUpdate)

// Report is the ICPHH header. The utility type and file status start empty and must be
// set before the header can be read back.
type Report struct {
	eiep.Envelope
	utilityType UtilityType
	fileStatus  FileStatus
}

func NewReport() *Report {
	return &Report{
		Envelope: eiep.NewEnvelope(DefaultVersion, SupportedVersions...),
	}
}

func (r *Report) FileType() string {
	return FileType
}

func (r *Report) UtilityType() UtilityType {
	return r.utilityType
}

func (r *Report) SetUtilityType(utilityType UtilityType) error {
	if err := eiep.CheckDomain("utility type", utilityTypes, utilityType); err != nil {
		return err
	}
	r.utilityType = utilityType
	return nil
}

func (r *Report) FileStatus() FileStatus {
	return r.fileStatus
}

func (r *Report) SetFileStatus(fileStatus FileStatus) error {
	if err := eiep.CheckDomain("file status", fileStatuses, fileStatus); err != nil {
		return err
	}
	r.fileStatus = fileStatus
	return nil
}

// ToRow renders the HDR row.
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
		c.ReportTime,
		c.Identifier,
		c.NumRecords,
		c.ReportMonth,
		string(r.utilityType),
		string(r.fileStatus),
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
		Version:     row.String(2),
		Sender:      row.String(3),
		OnBehalfOf:  row.String(4),
		Recipient:   row.String(5),
		ReportDate:  row.String(6),
		ReportTime:  row.String(7),
		Identifier:  row.String(8),
		NumRecords:  row.String(9),
		ReportMonth: row.String(10),
	})
	if err != nil {
		return err
	}
	utilityType := UtilityType(row.String(11))
	if err := eiep.CheckDomain("utility type", utilityTypes, utilityType); err != nil {
		return err
	}
	fileStatus := FileStatus(row.String(12))
	if err := eiep.CheckDomain("file status", fileStatuses, fileStatus); err != nil {
		return err
	}

	r.Envelope = envelope
	r.utilityType = utilityType
	r.fileStatus = fileStatus
	return nil
}

// ParseReport builds a report from an HDR row.
func ParseReport(row eiep.Row) (*Report, error) {
	r := NewReport()
	if err := r.FromRow(row); err != nil {
		return nil, err
	}
	return r, nil
}

// FileName is the conventional name for a file carrying this header.
func (r *Report) FileName() string {
	return fmt.Sprintf("%s_%s_%s_%s_%s_%s_%s.txt",
		r.Sender(),
		r.utilityType,
		r.Recipient(),
		FileType,
		r.ReportMonth(),
		r.ReportDateTime().Format(eiep.FileDateLayout),
		r.Identifier(),
	)
}

func ValidateFilename(name string) bool {
	return eiep.ValidateFilename(name, FileType)
}
