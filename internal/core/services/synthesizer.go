package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
	"github.com/custodia-labs/docask/internal/logger"
)

// Extractive synthesis constants.
const (
	snippetRadius   = 150
	leadingFallback = 300
	snippetSep      = "\n\n---\n\n"
	agentPromptMax  = 500
)

// NoInformationAnswer is the reply when nothing relevant was found.
func NoInformationAnswer(query string) string {
	return fmt.Sprintf("No information found about '%s' in documents.", query)
}

// SynthesizerOptions tunes answer synthesis.
type SynthesizerOptions struct {
	TopDocs          int
	ExcerptThreshold int
	ExcerptWindow    int
	ExcerptStep      int
	MaxTokens        int
	Temperature      float64
	Timeout          time.Duration

	// AgentPrompt is extra organisation context; its leading characters
	// are appended to the system instruction.
	AgentPrompt string
}

// DefaultSynthesizerOptions returns options from default settings.
func DefaultSynthesizerOptions() SynthesizerOptions {
	s := domain.DefaultAppSettings()
	return SynthesizerOptionsFrom(s)
}

// SynthesizerOptionsFrom derives options from application settings.
func SynthesizerOptionsFrom(s domain.AppSettings) SynthesizerOptions {
	return SynthesizerOptions{
		TopDocs:          s.Retrieval.TopDocs,
		ExcerptThreshold: s.Retrieval.ExcerptThreshold,
		ExcerptWindow:    s.Retrieval.ExcerptWindow,
		ExcerptStep:      s.Retrieval.ExcerptStep,
		MaxTokens:        s.LLM.MaxTokens,
		Temperature:      s.LLM.Temperature,
		Timeout:          s.LLM.Timeout,
	}
}

// SynthesisRequest is the input to Synthesize.
type SynthesisRequest struct {
	// Query is the question as asked.
	Query string

	// Terms are the normalised search terms.
	Terms string

	// Documents are ranked, best first.
	Documents []domain.Document

	// Profile personalises the answer; nil means none.
	Profile *domain.UserProfile
}

// SynthesisResult is the answer text and how it was produced.
type SynthesisResult struct {
	Text string
	Mode domain.SynthesisMode
}

// Synthesizer turns ranked documents into an answer.
// The LLM is optional; without it, or when it fails, answers quote the
// documents directly.
type Synthesizer struct {
	llm       driven.LLMService
	prompts   driven.PromptStore
	knowledge *domain.KnowledgeTable
	opts      SynthesizerOptions
}

// NewSynthesizer creates a synthesizer. llm and knowledge may be nil.
func NewSynthesizer(llm driven.LLMService, knowledge *domain.KnowledgeTable, opts SynthesizerOptions) *Synthesizer {
	defaults := DefaultSynthesizerOptions()
	if opts.TopDocs <= 0 {
		opts.TopDocs = defaults.TopDocs
	}
	if opts.ExcerptThreshold <= 0 {
		opts.ExcerptThreshold = defaults.ExcerptThreshold
	}
	if opts.ExcerptWindow <= 0 {
		opts.ExcerptWindow = defaults.ExcerptWindow
	}
	if opts.ExcerptStep <= 0 {
		opts.ExcerptStep = defaults.ExcerptStep
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaults.MaxTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	return &Synthesizer{llm: llm, knowledge: knowledge, opts: opts}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *Synthesizer) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// AIEnabled reports whether an LLM is configured.
func (s *Synthesizer) AIEnabled() bool {
	return s.llm != nil
}

// ModelName returns the LLM model name, or "" without an LLM.
func (s *Synthesizer) ModelName() string {
	if s.llm == nil {
		return ""
	}
	return s.llm.ModelName()
}

// Synthesize produces an answer. It never fails.
func (s *Synthesizer) Synthesize(ctx context.Context, req SynthesisRequest) SynthesisResult {
	if len(req.Documents) == 0 {
		return s.noDocuments(req)
	}

	if s.llm != nil {
		text, err := s.complete(ctx, req)
		if err == nil {
			return SynthesisResult{Text: text, Mode: domain.SynthesisLLM}
		}
		logger.Warn("LLM synthesis failed, using extractive answer: %v", err)
	}

	return SynthesisResult{
		Text: Extractive(req.Query, req.Terms, req.Documents),
		Mode: domain.SynthesisExtractive,
	}
}

func (s *Synthesizer) noDocuments(req SynthesisRequest) SynthesisResult {
	for _, text := range []string{req.Query, req.Terms} {
		if entry, ok := s.knowledge.Match(text); ok && entry.Description != "" {
			logger.Debug("No documents; answering %q from knowledge entry %q", req.Query, entry.Name)
			return SynthesisResult{Text: entry.Description, Mode: domain.SynthesisKnowledge}
		}
	}
	return SynthesisResult{Text: NoInformationAnswer(req.Query), Mode: domain.SynthesisNone}
}

func (s *Synthesizer) complete(ctx context.Context, req SynthesisRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	system := s.systemInstruction(req.Profile)
	user := fmt.Sprintf(s.loadPrompt(driven.PromptAnswerUser), s.buildContext(req), req.Query)

	logger.Debug("Calling LLM %s with %d documents", s.llm.ModelName(), min(len(req.Documents), s.opts.TopDocs))
	reply, err := s.llm.Complete(ctx, system, user, driven.CompleteOptions{
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSynthesis, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("%w: empty reply", domain.ErrSynthesis)
	}
	return reply, nil
}

func (s *Synthesizer) systemInstruction(profile *domain.UserProfile) string {
	var b strings.Builder
	b.WriteString(s.loadPrompt(driven.PromptAnswerSystem))

	if profile != nil && !profile.IsEmpty() {
		b.WriteString("\n\nThe person asking")
		if profile.Role != "" {
			fmt.Fprintf(&b, " works as: %s.", profile.Role)
		} else {
			b.WriteString(" has stated interests.")
		}
		if len(profile.FocusAreas) > 0 {
			fmt.Fprintf(&b, " Their focus areas are: %s. Emphasise details relevant to them.", strings.Join(profile.FocusAreas, ", "))
		}
	}

	if agent := strings.TrimSpace(s.opts.AgentPrompt); agent != "" {
		b.WriteString("\n\nOrganisation context:\n")
		b.WriteString(domain.Truncate(agent, agentPromptMax))
		if utf8.RuneCountInString(agent) > agentPromptMax {
			b.WriteString("...")
		}
	}

	return b.String()
}

func (s *Synthesizer) buildContext(req SynthesisRequest) string {
	var b strings.Builder
	for i, doc := range req.Documents {
		if i >= s.opts.TopDocs {
			break
		}
		content := doc.Content
		if utf8.RuneCountInString(doc.FullContent) > s.opts.ExcerptThreshold {
			content = SelectExcerpt(doc.FullContent, req.Terms, s.opts.ExcerptWindow, s.opts.ExcerptStep)
		}
		fmt.Fprintf(&b, "Document %d - %s%s:\n%s\n\n", i+1, doc.Filename, labelSuffix(doc.SourceLabel), content)
	}
	return b.String()
}

func (s *Synthesizer) loadPrompt(name string) string {
	if s.prompts != nil {
		prompt, err := s.prompts.Load(name)
		if err == nil && prompt != "" {
			return prompt
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Loading prompt %s: %v", name, err)
		}
	}
	return driven.DefaultPrompts[name]
}

// Extractive builds an answer by quoting each document around its first
// occurrence of terms, then query, then any single term. Documents with
// no occurrence contribute their leading text, so every filename appears.
func Extractive(query, terms string, docs []domain.Document) string {
	if len(docs) == 0 {
		return NoInformationAnswer(query)
	}

	needles := []string{terms, query}
	needles = append(needles, strings.Fields(terms)...)

	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		snippet := quote(doc.Text(), needles)
		parts = append(parts, fmt.Sprintf("From %s%s: %s", doc.Filename, labelSuffix(doc.SourceLabel), snippet))
	}
	return strings.Join(parts, snippetSep)
}

func quote(text string, needles []string) string {
	runes := []rune(text)
	lower := []rune(strings.ToLower(text))
	lowerText := string(lower)

	for _, needle := range needles {
		needle = strings.ToLower(strings.TrimSpace(needle))
		if needle == "" {
			continue
		}
		byteIdx := strings.Index(lowerText, needle)
		if byteIdx < 0 {
			continue
		}
		idx := utf8.RuneCountInString(lowerText[:byteIdx])
		start := max(0, idx-snippetRadius)
		end := min(len(runes), idx+utf8.RuneCountInString(needle)+snippetRadius)
		return strings.TrimSpace(string(runes[start:end]))
	}

	lead := strings.TrimSpace(domain.Truncate(text, leadingFallback))
	if utf8.RuneCountInString(text) > leadingFallback {
		lead += "..."
	}
	return lead
}

func labelSuffix(label string) string {
	if label == "" {
		return ""
	}
	return " (from " + label + ")"
}
