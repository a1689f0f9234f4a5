package file

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// knowledgeEntry is one [[entries]] table of a knowledge file.
type knowledgeEntry struct {
	Name        string   `toml:"name" json:"name"`
	Category    string   `toml:"category" json:"category"`
	Description string   `toml:"description" json:"description"`
	Aliases     []string `toml:"aliases" json:"aliases"`
}

type knowledgeFile struct {
	Entries []knowledgeEntry `toml:"entries" json:"entries"`
}

// LoadKnowledge reads a knowledge file. Files ending in .json are parsed
// as JSON, either a bare array or an object with an "entries" array;
// anything else is parsed as TOML with [[entries]] tables.
func LoadKnowledge(path string) ([]domain.KnowledgeEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseKnowledgeJSON(data)
	}
	return ParseKnowledgeTOML(data)
}

// ParseKnowledgeTOML parses TOML knowledge entries.
func ParseKnowledgeTOML(data []byte) ([]domain.KnowledgeEntry, error) {
	var f knowledgeFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: knowledge: %v", domain.ErrInvalidInput, err)
	}
	return toKnowledgeEntries(f.Entries)
}

// ParseKnowledgeJSON parses JSON knowledge entries.
func ParseKnowledgeJSON(data []byte) ([]domain.KnowledgeEntry, error) {
	var entries []knowledgeEntry
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("%w: knowledge: %v", domain.ErrInvalidInput, err)
		}
	} else {
		var f knowledgeFile
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return nil, fmt.Errorf("%w: knowledge: %v", domain.ErrInvalidInput, err)
		}
		entries = f.Entries
	}
	return toKnowledgeEntries(entries)
}

func toKnowledgeEntries(in []knowledgeEntry) ([]domain.KnowledgeEntry, error) {
	out := make([]domain.KnowledgeEntry, 0, len(in))
	seen := make(map[string]bool, len(in))
	for i, e := range in {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: knowledge entry %d has no name", domain.ErrInvalidInput, i+1)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate knowledge entry %q", domain.ErrInvalidInput, name)
		}
		seen[key] = true
		out = append(out, domain.KnowledgeEntry{
			Name:        name,
			Category:    strings.TrimSpace(e.Category),
			Description: strings.TrimSpace(e.Description),
			Aliases:     trimAll(e.Aliases),
		})
	}
	return out, nil
}

func trimAll(ss []string) []string {
	var out []string
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
