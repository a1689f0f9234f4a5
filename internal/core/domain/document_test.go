package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewDocument_BoundsContent tests that Content is capped and FullContent is kept
func TestNewDocument_BoundsContent(t *testing.T) {
	text := strings.Repeat("a", ContentLimit+500)
	group := ScopeGroup{Kind: ScopeOwned, Weight: 2.0, Label: "Jeff's folder"}

	doc := NewDocument("file-1", "Q2.pdf", FormatPDF, text, group, "drive")

	assert.Len(t, doc.Content, ContentLimit)
	assert.Equal(t, text, doc.FullContent)
	assert.Equal(t, "Jeff's folder", doc.SourceLabel)
	assert.Equal(t, 2.0, doc.Weight)
	assert.Equal(t, ScopeOwned, doc.Scope)
	assert.Equal(t, "drive", doc.Origin)
	require.NoError(t, doc.Validate())
}

// TestDocument_Validate tests boundary validation
func TestDocument_Validate(t *testing.T) {
	valid := Document{ID: "1", Filename: "a.txt", Format: FormatPlainText, Weight: 1}

	tests := []struct {
		name   string
		mutate func(*Document)
	}{
		{"empty id", func(d *Document) { d.ID = "" }},
		{"empty filename", func(d *Document) { d.Filename = "" }},
		{"unknown format", func(d *Document) { d.Format = "odt" }},
		{"negative weight", func(d *Document) { d.Weight = -1 }},
	}

	require.NoError(t, valid.Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := valid
			tt.mutate(&doc)
			err := doc.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

// TestDocument_Text tests the full-content preference
func TestDocument_Text(t *testing.T) {
	assert.Equal(t, "full", Document{Content: "short", FullContent: "full"}.Text())
	assert.Equal(t, "short", Document{Content: "short"}.Text())
}

// TestTruncate tests rune-safe truncation
func TestTruncate(t *testing.T) {
	assert.Equal(t, "", Truncate("hello", 0))
	assert.Equal(t, "hel", Truncate("hello", 3))
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "日本", Truncate("日本語", 2))
}

// TestFormatFromFilename tests extension mapping
func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		expected Format
	}{
		{"report.pdf", FormatPDF},
		{"Report.PDF", FormatPDF},
		{"memo.docx", FormatWord},
		{"notes.txt", FormatPlainText},
		{"readme.md", FormatPlainText},
		{"sales.xlsx", FormatSpreadsheet},
		{"letter.rtf", FormatRichText},
		{"image.png", FormatUnsupported},
		{"noext", FormatUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatFromFilename(tt.filename))
		})
	}
}

// TestFormatFromMIME tests remote MIME type mapping
func TestFormatFromMIME(t *testing.T) {
	assert.Equal(t, FormatPDF, FormatFromMIME(MIMEPDF))
	assert.Equal(t, FormatWord, FormatFromMIME(MIMEDocx))
	assert.Equal(t, FormatSpreadsheet, FormatFromMIME(MIMEXlsx))
	assert.Equal(t, FormatPlainText, FormatFromMIME(MIMEGoogleDoc))
	assert.Equal(t, FormatPlainText, FormatFromMIME("text/csv"))
	assert.Equal(t, FormatUnsupported, FormatFromMIME("image/png"))
	assert.True(t, IsNativeMIME(MIMEGoogleSheet))
	assert.False(t, IsNativeMIME(MIMEPDF))
}

// TestFormat_IsSupported tests the unsupported sentinel format
func TestFormat_IsSupported(t *testing.T) {
	assert.True(t, FormatPDF.IsSupported())
	assert.True(t, FormatUnsupported.IsValid())
	assert.False(t, FormatUnsupported.IsSupported())
	assert.False(t, Format("odt").IsValid())
}

// TestExclusionList tests case-insensitive filename exclusion
func TestExclusionList(t *testing.T) {
	list := NewExclusionList("System_Prompt.txt", "", "  ")

	assert.Equal(t, 1, list.Len())
	assert.True(t, list.Excludes("system_prompt.TXT"))
	assert.False(t, list.Excludes("report.txt"))
	assert.False(t, ExclusionList{}.Excludes("anything"))
}
