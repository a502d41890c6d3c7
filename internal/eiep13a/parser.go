package eiep13a

import (
	"io"
	"log/slog"

	"github.com/georgesolomos/eiep/internal/eiep"
)

// NewParser reads ICPCONS files into report.
func NewParser(logger *slog.Logger, report *Report) *eiep.Parser[*DetailRecord] {
	return eiep.NewParser(logger, report, ParseDetailRecord)
}

// NewWriter writes report's HDR row to dst and returns a writer for the DET rows.
func NewWriter(logger *slog.Logger, dst io.Writer, report *Report) (*eiep.Writer[*DetailRecord], error) {
	return eiep.NewWriter[*DetailRecord](logger, dst, report)
}

// StreamFromFile reads the file at path, populating the report and calling fn per record.
func (r *Report) StreamFromFile(path string, fn func(*DetailRecord) error) error {
	return NewParser(nil, r).ParseFile(path, fn)
}

func (r *Report) ReadFromStream(src io.Reader, fn func(*DetailRecord) error) error {
	return NewParser(nil, r).Parse(src, fn)
}

// WriteRecords sets the record count from records and writes the whole file to dst.
func (r *Report) WriteRecords(dst io.Writer, records []*DetailRecord) error {
	return eiep.WriteAll(nil, dst, r, records)
}
