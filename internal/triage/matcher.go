// Package triage finds seeded reports that resemble a new report
// description, so a submitter can see related concerns.
package triage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/hyperengineering/aequiflow/internal/embedding"
	"github.com/hyperengineering/aequiflow/internal/types"
)

const (
	DefaultThreshold = 0.8
	DefaultMaxHints  = 3
)

// Match is a seeded report and its similarity to the queried description.
type Match struct {
	Report     types.Report `json:"report"`
	Similarity float32      `json:"similarity"`
}

// Matcher compares descriptions against a fixed set of reports.
// A Matcher with a nil embedder is disabled and never returns matches.
type Matcher struct {
	embedder  embedding.Embedder
	reports   []types.Report
	threshold float32
	maxHints  int

	mu      sync.Mutex
	vectors [][]float32
}

// NewMatcher creates a matcher. Non-positive threshold or maxHints fall back
// to the defaults.
func NewMatcher(e embedding.Embedder, reports []types.Report, threshold float32, maxHints int) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if maxHints <= 0 {
		maxHints = DefaultMaxHints
	}
	return &Matcher{
		embedder:  e,
		reports:   append([]types.Report(nil), reports...),
		threshold: threshold,
		maxHints:  maxHints,
	}
}

// Enabled reports whether the matcher can produce hints.
func (m *Matcher) Enabled() bool {
	return m != nil && m.embedder != nil
}

// Similar returns the reports whose similarity to description reaches the
// threshold, best first.
func (m *Matcher) Similar(ctx context.Context, description string) ([]Match, error) {
	description = strings.TrimSpace(description)
	if !m.Enabled() || description == "" || len(m.reports) == 0 {
		return nil, nil
	}

	vectors, err := m.reportVectors(ctx)
	if err != nil {
		return nil, err
	}

	query, err := m.embedder.Embed(ctx, description)
	if err != nil {
		return nil, fmt.Errorf("embed description: %w", err)
	}

	var matches []Match
	for i, v := range vectors {
		score := embedding.CosineSimilarity(query, v)
		if score >= m.threshold {
			matches = append(matches, Match{Report: m.reports[i], Similarity: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > m.maxHints {
		matches = matches[:m.maxHints]
	}
	return matches, nil
}

// reportVectors embeds the report descriptions on first use. A failed
// attempt is retried on the next call.
func (m *Matcher) reportVectors(ctx context.Context) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vectors != nil {
		return m.vectors, nil
	}

	texts := make([]string, len(m.reports))
	for i, r := range m.reports {
		texts[i] = r.Description
	}

	vectors, err := m.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed reports: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed reports: expected %d vectors, got %d", len(texts), len(vectors))
	}

	m.vectors = vectors
	slog.Info("report embeddings ready",
		"component", "triage",
		"reports", len(vectors),
		"model", m.embedder.ModelName(),
	)
	return m.vectors, nil
}
