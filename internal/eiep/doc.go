// Package eiep holds the parts shared by every EIEP exchange file format: the column
// codec, the header envelope, the streaming reader and writer, and the filename check.
//
// A file is comma-delimited text. Row 0 is a header ("HDR") describing the batch and
// every later row is a detail record ("DET"). The text "null", in any case, marks an
// absent column. Format packages (eiep3, eiep13a) supply the concrete header and
// record types.
package eiep
