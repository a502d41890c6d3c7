package eiep

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"strconv"
)

type parseState int

const (
	awaitingHeader parseState = iota
	streamingDetails
	aborted
)

func (s parseState) String() string {
	switch s {
	case awaitingHeader:
		return "awaiting header"
	case streamingDetails:
		return "streaming details"
	case aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Parser reads a header row followed by detail rows, pushing each record to a callback.
// A Parser populates its header in place and must not be shared between concurrent reads.
type Parser[R Record] struct {
	logger *slog.Logger
	header Header
	parse  func(Row) (R, error)
}

func NewParser[R Record](logger *slog.Logger, header Header, parse func(Row) (R, error)) *Parser[R] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser[R]{
		logger: logger,
		header: header,
		parse:  parse,
	}
}

// ParseFile opens path and parses it. The file is closed before returning.
func (p *Parser[R]) ParseFile(path string, fn func(R) error) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("%w: %v", ErrResource, err)
	}
	defer file.Close()
	return p.Parse(file, fn)
}

// Parse reads src to the end. Row 0 must be a valid header. Every later row is parsed
// into a record and handed to fn before the next row is read. The first failure ends
// the read. If fn returns ErrStop, Parse returns nil without reading further.
func (p *Parser[R]) Parse(src io.Reader, fn func(R) error) error {
	if isNil(src) {
		return ErrResource
	}
	reader := createReader(src)
	state := awaitingHeader
	delivered := 0

	abort := func(line int, err error) error {
		p.logger.Error("Aborting read",
			slog.Int("line", line),
			slog.String("state", state.String()),
			slog.String("error", err.Error()))
		state = aborted
		return err
	}

	for {
		columns, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				line = csvErr.Line
			}
			return abort(line, &LineError{Line: line, Err: fmt.Errorf("%w: %w", ErrSyntax, err)})
		}
		line, _ := reader.FieldPos(0)
		row := CleanRow(columns)

		switch state {
		case awaitingHeader:
			if err := p.header.FromRow(row); err != nil {
				return abort(line, fmt.Errorf("%w: %w", ErrInvalidHeader, err))
			}
			p.logger.Debug("Parsed HDR record", slog.Any("header", p.header.ToRow()))
			state = streamingDetails
		case streamingDetails:
			record, err := p.parse(row)
			if err != nil {
				return abort(line, &LineError{Line: line, Err: err})
			}
			p.logger.Debug("Parsed DET record", slog.Int("line", line))
			delivered++
			if err := fn(record); err != nil {
				if errors.Is(err, ErrStop) {
					p.logger.Info("Read stopped by consumer", slog.Int("records", delivered))
					return nil
				}
				return abort(line, err)
			}
		}
	}

	if state == awaitingHeader {
		return fmt.Errorf("%w: %w", ErrInvalidHeader, &StructuralError{Record: HeaderMarker, Expected: 1, Found: 0})
	}
	if declared := p.header.NumRecords(); declared != delivered {
		return &CountError{Declared: declared, Actual: delivered}
	}
	p.logger.Info("Finished reading file",
		slog.String("fileType", p.header.FileType()),
		slog.Int("records", delivered))
	return nil
}

// Writer emits a header row and then one row per record.
type Writer[R Record] struct {
	logger  *slog.Logger
	csv     *csv.Writer
	header  Header
	written int
	closed  bool
}

// NewWriter writes the header row to dst straight away. The header's record count
// must already match the number of records that will be written.
func NewWriter[R Record](logger *slog.Logger, dst io.Writer, header Header) (*Writer[R], error) {
	if isNil(dst) {
		return nil, ErrResource
	}
	if logger == nil {
		logger = slog.Default()
	}
	if n := header.NumRecords(); n > MaxRecordCount {
		return nil, domainError("record count", strconv.Itoa(n), fmt.Sprintf("expected at most %d", MaxRecordCount))
	}
	w := &Writer[R]{
		logger: logger,
		csv:    csv.NewWriter(dst),
		header: header,
	}
	if err := w.csv.Write(header.ToRow()); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer[R]) Write(record R) error {
	if w.closed {
		return errors.New("write to closed writer")
	}
	if err := w.csv.Write(record.ToRow()); err != nil {
		return err
	}
	w.written++
	return nil
}

// Written is the number of detail rows written so far.
func (w *Writer[R]) Written() int {
	return w.written
}

// Close flushes buffered rows. It reports ErrRecordCount if the number of rows
// written differs from the header's count; the rows are already in dst by then.
// Close doesn't close dst.
func (w *Writer[R]) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return err
	}
	if declared := w.header.NumRecords(); declared != w.written {
		w.logger.Error("Record count mismatch", slog.Int("declared", declared), slog.Int("written", w.written))
		return &CountError{Declared: declared, Actual: w.written}
	}
	w.logger.Debug("Finished writing file",
		slog.String("fileType", w.header.FileType()),
		slog.Int("records", w.written))
	return nil
}

// WriteAll sets the header's record count to len(records) and writes the whole file.
func WriteAll[R Record](logger *slog.Logger, dst io.Writer, header Header, records []R) error {
	header.SetNumRecords(len(records))
	w, err := NewWriter[R](logger, dst, header)
	if err != nil {
		return err
	}
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Close()
}

// PeekFileType reads the first row of src and returns its file-type column if it's a
// header for a supported format. src is consumed.
func PeekFileType(src io.Reader) (string, bool) {
	if isNil(src) {
		return "", false
	}
	columns, err := createReader(src).Read()
	if err != nil || len(columns) < 2 {
		return "", false
	}
	row := CleanRow(columns)
	if row.String(0) != HeaderMarker || !knownFileTypes.Contains(row.String(1)) {
		return "", false
	}
	return row.String(1), true
}

func createReader(src io.Reader) *csv.Reader {
	csvReader := csv.NewReader(src)
	// Header and detail rows have different widths, so the reader mustn't enforce one.
	// Each record checks its own column count.
	csvReader.FieldsPerRecord = -1
	csvReader.ReuseRecord = true
	return csvReader
}

// isNil catches typed nil pointers hidden in an interface, such as a nil *os.File.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
