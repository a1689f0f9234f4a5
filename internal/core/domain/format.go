package domain

import (
	"path/filepath"
	"strings"
)

// Format identifies how a document's raw bytes are decoded into text.
// The set is closed; anything not recognised is FormatUnsupported.
type Format string

// Supported document formats.
const (
	FormatPDF         Format = "pdf"
	FormatWord        Format = "word"
	FormatPlainText   Format = "plain-text"
	FormatSpreadsheet Format = "spreadsheet"
	FormatRichText    Format = "rich-text"
	FormatUnsupported Format = "unsupported"
)

// IsValid returns true if the format is one of the declared values.
func (f Format) IsValid() bool {
	switch f {
	case FormatPDF, FormatWord, FormatPlainText, FormatSpreadsheet, FormatRichText, FormatUnsupported:
		return true
	default:
		return false
	}
}

// IsSupported returns true if text can be extracted from the format.
func (f Format) IsSupported() bool {
	return f.IsValid() && f != FormatUnsupported
}

// String returns the string representation.
func (f Format) String() string {
	return string(f)
}

// Well-known MIME types.
const (
	MIMEPDF         = "application/pdf"
	MIMEDocx        = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEXlsx        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMERTF         = "application/rtf"
	MIMETextRTF     = "text/rtf"
	MIMEPlainText   = "text/plain"
	MIMEGoogleDoc   = "application/vnd.google-apps.document"
	MIMEGoogleSheet = "application/vnd.google-apps.spreadsheet"
	MIMEGoogleSlide = "application/vnd.google-apps.presentation"
)

var extensionFormats = map[string]Format{
	".pdf":      FormatPDF,
	".docx":     FormatWord,
	".txt":      FormatPlainText,
	".md":       FormatPlainText,
	".markdown": FormatPlainText,
	".csv":      FormatPlainText,
	".log":      FormatPlainText,
	".xlsx":     FormatSpreadsheet,
	".xlsm":     FormatSpreadsheet,
	".rtf":      FormatRichText,
}

// FormatFromFilename maps a file extension to a Format.
func FormatFromFilename(name string) Format {
	if f, ok := extensionFormats[strings.ToLower(filepath.Ext(name))]; ok {
		return f
	}
	return FormatUnsupported
}

// FormatFromMIME maps a MIME type to a Format.
// Native Google documents are exported as text and map to FormatPlainText.
func FormatFromMIME(mimeType string) Format {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	switch mimeType {
	case MIMEPDF:
		return FormatPDF
	case MIMEDocx:
		return FormatWord
	case MIMEXlsx:
		return FormatSpreadsheet
	case MIMERTF, MIMETextRTF:
		return FormatRichText
	case MIMEGoogleDoc, MIMEGoogleSheet, MIMEGoogleSlide:
		return FormatPlainText
	}

	if strings.HasPrefix(mimeType, "text/") {
		return FormatPlainText
	}
	return FormatUnsupported
}

// IsNativeMIME returns true for documents that have no byte representation
// and must be exported as text.
func IsNativeMIME(mimeType string) bool {
	switch mimeType {
	case MIMEGoogleDoc, MIMEGoogleSheet, MIMEGoogleSlide:
		return true
	default:
		return false
	}
}
