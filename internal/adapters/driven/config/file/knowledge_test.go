package file

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docask/internal/core/domain"
)

const sampleKnowledgeTOML = `
[[entries]]
name = "Dealertrack"
category = "vendor"
description = "Dealer management software."
aliases = ["dealer track", " DT "]

[[entries]]
name = "Apex"
category = "product"
description = "Internal CRM."
`

func TestParseKnowledgeTOML(t *testing.T) {
	entries, err := ParseKnowledgeTOML([]byte(sampleKnowledgeTOML))

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Dealertrack", entries[0].Name)
	assert.Equal(t, []string{"dealer track", "DT"}, entries[0].Aliases)
	assert.Equal(t, "Apex", entries[1].Name)
	assert.Nil(t, entries[1].Aliases)
}

func TestParseKnowledgeTOML_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax error", "[[entries]\nname ="},
		{"unknown field", "[[entries]]\nname = \"A\"\ncolour = \"red\""},
		{"missing name", "[[entries]]\ndescription = \"x\""},
		{"duplicate name", "[[entries]]\nname = \"A\"\n[[entries]]\nname = \"a\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseKnowledgeTOML([]byte(tt.data))
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "got %v", err)
		})
	}
}

func TestParseKnowledgeJSON(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		entries, err := ParseKnowledgeJSON([]byte(`[{"name":"CDK","aliases":["cdk global"]}]`))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, []string{"cdk global"}, entries[0].Aliases)
	})

	t.Run("entries object", func(t *testing.T) {
		entries, err := ParseKnowledgeJSON([]byte(`{"entries":[{"name":"CDK"},{"name":"Apex"}]}`))
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParseKnowledgeJSON([]byte(`{"entries":`))
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}

func TestLoadKnowledge_PicksParserByExtension(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "knowledge.toml")
	jsonPath := filepath.Join(dir, "knowledge.JSON")
	require.NoError(t, os.WriteFile(tomlPath, []byte(sampleKnowledgeTOML), 0600))
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"name":"CDK"}]`), 0600))

	fromTOML, err := LoadKnowledge(tomlPath)
	require.NoError(t, err)
	assert.Len(t, fromTOML, 2)

	fromJSON, err := LoadKnowledge(jsonPath)
	require.NoError(t, err)
	assert.Len(t, fromJSON, 1)

	_, err = LoadKnowledge(filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
