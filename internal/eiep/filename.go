package eiep

import (
	"regexp"

	mapset "github.com/deckarep/golang-set/v2"
)

// SENDER_UTILITY_RECIPIENT_FILETYPE_YYYYMM_YYYYMMDD_IDENTIFIER.ext
var filenameRegex = regexp.MustCompile(`^([A-Z]{4})_([A-Z])_([A-Z]{4})_([A-Z]{1,7})_([0-9]{6})_([0-9]{8})_(.*?)\.(csv|txt)$`)

// File types this module can read and write.
const (
	FileTypeICPHH   = "ICPHH"
	FileTypeICPCONS = "ICPCONS"
)

var knownFileTypes = mapset.NewSet(FileTypeICPHH, FileTypeICPCONS)

// FilenameParts are the tokens of a conventional exchange filename.
type FilenameParts struct {
	Sender      string
	UtilityType string
	Recipient   string
	FileType    string
	ReportMonth string
	ReportDate  string
	Identifier  string
	Extension   string
}

func ParseFilename(name string) (FilenameParts, bool) {
	m := filenameRegex.FindStringSubmatch(name)
	if m == nil {
		return FilenameParts{}, false
	}
	return FilenameParts{
		Sender:      m[1],
		UtilityType: m[2],
		Recipient:   m[3],
		FileType:    m[4],
		ReportMonth: m[5],
		ReportDate:  m[6],
		Identifier:  m[7],
		Extension:   m[8],
	}, true
}

// ValidateFilename reports whether name follows the convention and carries fileType.
func ValidateFilename(name, fileType string) bool {
	parts, ok := ParseFilename(name)
	return ok && parts.FileType == fileType
}

// DetectFileType returns the file type named by a conventional filename, if it's one we support.
func DetectFileType(name string) (string, bool) {
	parts, ok := ParseFilename(name)
	if !ok || !knownFileTypes.Contains(parts.FileType) {
		return "", false
	}
	return parts.FileType, true
}
