package export

import (
	"fmt"
	"io"
)

type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"
	FormatWord  Format = "word"
)

// ParseFormat validates a format token from the request path.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPDF, FormatExcel, FormatWord:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Filename is the download name for the format.
func (f Format) Filename() string {
	switch f {
	case FormatPDF:
		return "quiz-results.pdf"
	case FormatExcel:
		return "quiz-results.xlsx"
	case FormatWord:
		return "quiz-results.doc"
	}
	return "quiz-results"
}

// ContentType is the MIME type sent with the download.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatWord:
		return "application/msword"
	}
	return "application/octet-stream"
}

// Write renders the snapshot in the chosen format.
func (f Format) Write(w io.Writer, snap Snapshot) error {
	switch f {
	case FormatPDF:
		return WritePDF(w, snap)
	case FormatExcel:
		return WriteExcel(w, snap)
	case FormatWord:
		return WriteWord(w, snap)
	}
	return fmt.Errorf("unsupported export format %q", f)
}
