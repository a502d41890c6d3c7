package eiep

import (
	"fmt"
	"strconv"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/exp/slices"

	"github.com/georgesolomos/eiep/internal/util"
)

// Widths of the header columns that are fixed-width in the legacy layout. They are
// applied when writing only.
const (
	ParticipantWidth = 4
	IdentifierWidth  = 15
	CountWidth       = 8
)

// MaxRecordCount is the largest count that fits the record count column.
const MaxRecordCount = 99999999

// Header is the batch metadata carried on row 0 of a file.
type Header interface {
	FileType() string
	ToRow() []string
	FromRow(row Row) error
	NumRecords() int
	SetNumRecords(n int)
}

// Envelope holds the header attributes shared by every format.
type Envelope struct {
	version  string
	versions mapset.Set[string]

	sender     string
	onBehalfOf string
	recipient  string
	identifier string
	numRecords int

	// reportDate, reportTime and reportMonth are text renderings of reportDateTime and
	// only change together. A parsed header keeps the time and month columns as read,
	// so the time is empty when the column was empty or the format has none.
	reportDateTime time.Time
	reportDate     string
	reportTime     string
	reportMonth    string
}

func NewEnvelope(defaultVersion string, supported ...string) Envelope {
	e := Envelope{
		version:  defaultVersion,
		versions: mapset.NewSet(supported...),
	}
	e.SetReportDate(time.Now())
	return e
}

func (e *Envelope) Version() string {
	return e.version
}

func (e *Envelope) SetVersion(version string) error {
	if e.versions == nil || !e.versions.Contains(version) {
		return &VersionError{Version: version, Supported: e.SupportedVersions()}
	}
	e.version = version
	return nil
}

// SupportedVersions returns the accepted protocol versions in ascending order.
func (e *Envelope) SupportedVersions() []string {
	if e.versions == nil {
		return nil
	}
	versions := e.versions.ToSlice()
	slices.Sort(versions)
	return versions
}

// RestrictVersions narrows the accepted versions to a subset of the current ones.
func (e *Envelope) RestrictVersions(versions ...string) error {
	if len(versions) == 0 {
		return fmt.Errorf("at least one version is required")
	}
	restricted := mapset.NewSet(versions...)
	if e.versions == nil || !restricted.IsSubset(e.versions) {
		return &VersionError{Version: fmt.Sprint(versions), Supported: e.SupportedVersions()}
	}
	e.versions = restricted
	if !e.versions.Contains(e.version) {
		e.version = e.SupportedVersions()[0]
	}
	return nil
}

func (e *Envelope) Sender() string {
	return e.sender
}

func (e *Envelope) SetSender(sender string) {
	e.sender = sender
}

func (e *Envelope) OnBehalfOf() string {
	return e.onBehalfOf
}

func (e *Envelope) SetOnBehalfOf(onBehalfOf string) {
	e.onBehalfOf = onBehalfOf
}

func (e *Envelope) Recipient() string {
	return e.recipient
}

func (e *Envelope) SetRecipient(recipient string) {
	e.recipient = recipient
}

func (e *Envelope) Identifier() string {
	return e.identifier
}

func (e *Envelope) SetIdentifier(identifier string) {
	e.identifier = identifier
}

func (e *Envelope) NumRecords() int {
	return e.numRecords
}

func (e *Envelope) SetNumRecords(n int) {
	e.numRecords = n
}

func (e *Envelope) ReportDateTime() time.Time {
	return e.reportDateTime
}

// SetReportDate is the only way to change the report date, time and month.
func (e *Envelope) SetReportDate(t time.Time) {
	e.reportDateTime = t
	e.reportDate = t.Format(DateLayout)
	e.reportTime = t.Format(TimeLayout)
	e.reportMonth = t.Format(MonthLayout)
}

func (e *Envelope) ReportDate() string {
	return e.reportDate
}

func (e *Envelope) ReportTime() string {
	return e.reportTime
}

func (e *Envelope) ReportMonth() string {
	return e.reportMonth
}

// EnvelopeColumns are the raw shared header columns of one row. ReportTime and
// ReportMonth are left empty by formats that don't carry them.
type EnvelopeColumns struct {
	Version     string
	Sender      string
	OnBehalfOf  string
	Recipient   string
	ReportDate  string
	ReportTime  string
	ReportMonth string
	Identifier  string
	NumRecords  string
}

// Decode validates c and returns a copy of e populated from it. e itself is never
// modified, so a caller can finish its own checks before adopting the result.
func (e Envelope) Decode(c EnvelopeColumns) (Envelope, error) {
	if err := e.SetVersion(c.Version); err != nil {
		return Envelope{}, err
	}
	date, err := ParseDate("report date", c.ReportDate)
	if err != nil {
		return Envelope{}, err
	}
	if c.ReportTime != "" {
		if _, err := ParseTime("report time", c.ReportTime); err != nil {
			return Envelope{}, err
		}
	}
	reportMonth := date.Format(MonthLayout)
	if c.ReportMonth != "" {
		if _, err := time.Parse(MonthLayout, c.ReportMonth); err != nil {
			return Envelope{}, domainError("report month", c.ReportMonth, "expected YYYYMM")
		}
		reportMonth = c.ReportMonth
	}
	numRecords, err := ParseCount(c.NumRecords)
	if err != nil {
		return Envelope{}, err
	}

	e.SetReportDate(util.Midnight(date))
	e.reportTime = c.ReportTime
	e.reportMonth = reportMonth
	e.sender = c.Sender
	e.onBehalfOf = c.OnBehalfOf
	e.recipient = c.Recipient
	e.identifier = c.Identifier
	e.numRecords = numRecords
	return e, nil
}

// Encode renders the shared columns with the legacy fixed widths applied.
func (e *Envelope) Encode() EnvelopeColumns {
	return EnvelopeColumns{
		Version:     e.version,
		Sender:      Truncate(e.sender, ParticipantWidth),
		OnBehalfOf:  Truncate(e.onBehalfOf, ParticipantWidth),
		Recipient:   Truncate(e.recipient, ParticipantWidth),
		ReportDate:  e.reportDate,
		ReportTime:  e.reportTime,
		ReportMonth: e.reportMonth,
		Identifier:  Truncate(e.identifier, IdentifierWidth),
		NumRecords:  FormatCount(e.numRecords),
	}
}

func FormatCount(n int) string {
	return fmt.Sprintf("%0*d", CountWidth, n)
}

func ParseCount(text string) (int, error) {
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, domainError("record count", text, "expected a non-negative integer")
	}
	return n, nil
}
