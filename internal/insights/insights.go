// Package insights produces the AI executive summary of the dashboard. The
// remote model is strictly best-effort: any failure yields a fixed fallback
// string and never touches transaction or collaborator state.
package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"vexpenses/internal/cache"
	"vexpenses/internal/core"
	"vexpenses/internal/log"
)

const (
	// FallbackMessage is returned when the advisor cannot be reached.
	FallbackMessage = "Error connecting to AI advisor. Please check your configuration."
	// EmptyMessage is returned when the model produced no text.
	EmptyMessage = "Unable to generate insights at this time."
)

// Generator is the text-generation boundary. It exists so tests can stub the
// remote model.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator calls the Gemini API through google.golang.org/genai.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

// Service caches generated reports so repeated dashboard loads do not hammer
// the model while the underlying numbers are unchanged.
type Service struct {
	gen    Generator
	cache  *cache.LRUCache[string]
	logger *log.Logger
}

func NewService(gen Generator, ttl time.Duration, logger *log.Logger) *Service {
	return &Service{
		gen:    gen,
		cache:  cache.NewLRU[string](32, ttl),
		logger: logger.WithComponent(log.ComponentInsights),
	}
}

// Cache exposes the report cache for expiry-sweep registration.
func (s *Service) Cache() cache.Cleaner {
	return s.cache
}

// ExecutiveSummary returns the analyst report for the given summary. It never
// fails: remote errors collapse into the fixed fallback string.
func (s *Service) ExecutiveSummary(ctx context.Context, summary core.Summary) string {
	if s.gen == nil {
		return FallbackMessage
	}

	key := cacheKey(summary)
	if report, ok := s.cache.Get(key); ok {
		return report
	}

	report, err := s.gen.GenerateText(ctx, buildPrompt(summary))
	if err != nil {
		s.logger.ErrorContext(ctx, "Insight generation failed", log.FieldError, err)
		return FallbackMessage
	}
	if strings.TrimSpace(report) == "" {
		return EmptyMessage
	}

	s.cache.Set(key, report)
	return report
}

func cacheKey(summary core.Summary) string {
	return fmt.Sprintf("%s|%d|%s",
		summary.TotalExpenses.String(),
		summary.PendingCount,
		summary.CorporateCardShare.String())
}

func buildPrompt(summary core.Summary) string {
	var b strings.Builder
	b.WriteString("As a senior financial analyst, provide a concise executive summary of this corporate expense performance.\n")
	b.WriteString("Data:\n")
	fmt.Fprintf(&b, "- Total Expenses: R$ %s\n", summary.TotalExpenses.StringFixed(2))
	fmt.Fprintf(&b, "- Pending Refunds Count: %d\n", summary.PendingCount)
	fmt.Fprintf(&b, "- Savings Generated: %d (Trend: %s)\n", summary.Savings, summary.SavingsTrend)
	fmt.Fprintf(&b, "- Corporate Card Expenses: R$ %s\n", summary.CorporateCardShare.StringFixed(2))
	fmt.Fprintf(&b, "- Average Approval Time: %s\n", summary.AvgApprovalTime)
	b.WriteString("\nFormat your response in Markdown with:\n")
	b.WriteString("1. A short overall assessment of the expense management efficiency.\n")
	b.WriteString("2. 3 key bullet points identifying risks or opportunities based on the trends and spending volume.\n")
	b.WriteString("3. One strategic recommendation for optimizing corporate spending for the next quarter.\n")
	b.WriteString("\nKeep it professional, concise, and data-driven.\n")
	return b.String()
}
