package normalisers

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/logger"
)

type stubExtractor struct {
	format domain.Format
	text   string
	err    error
}

func (s *stubExtractor) Format() domain.Format { return s.format }

func (s *stubExtractor) Extract(_ context.Context, _ []byte) (string, error) {
	return s.text, s.err
}

func TestRegistry_Extract(t *testing.T) {
	var logs bytes.Buffer
	logger.SetOutput(&logs)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	r := NewRegistry()
	r.Register(&stubExtractor{format: domain.FormatPlainText, text: "hello"})
	r.Register(&stubExtractor{format: domain.FormatPDF, err: errors.New("corrupt xref")})

	ctx := context.Background()
	assert.Equal(t, "hello", r.Extract(ctx, []byte("x"), domain.FormatPlainText))
	assert.Equal(t, "", r.Extract(ctx, []byte("x"), domain.FormatPDF))
	assert.Contains(t, logs.String(), "corrupt xref")
	assert.Equal(t, "[unsupported format: spreadsheet]", r.Extract(ctx, nil, domain.FormatSpreadsheet))
	assert.Equal(t, "[unsupported format: unsupported]", r.Extract(ctx, nil, domain.FormatUnsupported))
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{format: domain.FormatPlainText, text: "old"})
	r.Register(&stubExtractor{format: domain.FormatPlainText, text: "new"})

	assert.Equal(t, "new", r.Extract(context.Background(), nil, domain.FormatPlainText))
	assert.Equal(t, []domain.Format{domain.FormatPlainText}, r.SupportedFormats())
}

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	assert.ElementsMatch(t, []domain.Format{
		domain.FormatPDF,
		domain.FormatWord,
		domain.FormatPlainText,
		domain.FormatSpreadsheet,
		domain.FormatRichText,
	}, r.SupportedFormats())

	ctx := context.Background()
	assert.Equal(t, "plain words", r.Extract(ctx, []byte("\xef\xbb\xbfplain words"), domain.FormatPlainText))
	assert.Equal(t, "", r.Extract(ctx, []byte("not a pdf"), domain.FormatPDF))
	assert.Equal(t, "", r.Extract(ctx, []byte("not a zip"), domain.FormatWord))
	assert.Equal(t, "", r.Extract(ctx, []byte("not a zip"), domain.FormatSpreadsheet))
}
