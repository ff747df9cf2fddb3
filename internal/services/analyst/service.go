package analyst

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/finbrief/finbrief/internal/common"
	"github.com/finbrief/finbrief/internal/interfaces"
	"github.com/finbrief/finbrief/internal/models"
)

const (
	analysisSystemPrompt = "You are a cautious equity analyst writing for a retail investor. " +
		"Base your view only on the provided price move and news excerpts. " +
		"Respond with exactly two lines:\n" +
		"RECOMMENDATION: BUY, SELL or HOLD\n" +
		"ANALYSIS: two or three sentences explaining the recommendation."

	summarySystemPrompt = "You are a friendly financial assistant writing the opening paragraph " +
		"of a weekly portfolio email. Address the reader in the second person. " +
		"Write a single flowing paragraph, no lists, no headings, at most 120 words."

	// Article bodies are truncated before prompting so one long page
	// cannot crowd out the rest of the context.
	maxExcerptLen = 1200

	analysisTemperature = 0.2
	analysisMaxTokens   = 500
	summaryMaxTokens    = 400

	fallbackOverview = "Your weekly portfolio digest is ready. See the details below."
)

// Service turns price moves and news into recommendations via an LLM.
// Every call degrades to a safe default: a failed analysis becomes a
// HOLD, a failed summary becomes a fixed sentence. Callers never see
// an error from this service.
type Service struct {
	logger *common.Logger
	llm    interfaces.LLMClient
}

// NewService creates an analyst service.
func NewService(logger *common.Logger, llm interfaces.LLMClient) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		logger: logger,
		llm:    llm,
	}
}

var _ interfaces.AnalystService = (*Service)(nil)

// Analyze produces a recommendation for one ticker. LLM failures and
// malformed responses both degrade to HOLD with a fallback summary.
func (s *Service) Analyze(ctx context.Context, in interfaces.AnalysisInput) models.Analysis {
	result := models.Analysis{
		Ticker:         in.Ticker,
		Recommendation: models.RecommendationHold,
		Summary:        fallbackSummary(in.Ticker),
		NewsURLs:       newsURLs(in.News),
	}

	if s.llm == nil {
		s.logger.Debug().Str("ticker", in.Ticker).Msg("No LLM client configured, defaulting to HOLD")
		return result
	}

	raw, err := s.llm.Complete(ctx, models.CompletionRequest{
		System:      analysisSystemPrompt,
		User:        buildAnalysisPrompt(in),
		Temperature: analysisTemperature,
		MaxTokens:   analysisMaxTokens,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", in.Ticker).Msg("Analysis completion failed, defaulting to HOLD")
		return result
	}

	rec, summary := parseAnalysisResponse(raw)
	result.Recommendation = rec
	if summary != "" {
		result.Summary = summary
	}
	return result
}

// Summarize produces the portfolio overview paragraph. Failures degrade
// to a fixed sentence so the digest email is never blocked on the LLM.
func (s *Service) Summarize(ctx context.Context, in interfaces.SummaryInput) string {
	if s.llm == nil {
		return fallbackOverview
	}

	raw, err := s.llm.Complete(ctx, models.CompletionRequest{
		System:      summarySystemPrompt,
		User:        buildSummaryPrompt(in),
		Temperature: analysisTemperature,
		MaxTokens:   summaryMaxTokens,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Summary completion failed, using fallback overview")
		return fallbackOverview
	}
	return strings.TrimSpace(raw)
}

func buildAnalysisPrompt(in interfaces.AnalysisInput) string {
	var b strings.Builder
	name := in.CompanyName
	if name == "" {
		name = in.Ticker
	}
	fmt.Fprintf(&b, "Stock: %s (%s)\n", name, in.Ticker)
	fmt.Fprintf(&b, "Current price: %.2f\n", in.CurrentPrice)
	if in.BaselinePrice != 0 {
		change := in.CurrentPrice - in.BaselinePrice
		fmt.Fprintf(&b, "Price one week ago: %.2f (change %+.2f, %+.2f%%)\n",
			in.BaselinePrice, change, change/in.BaselinePrice*100)
	}

	if len(in.News) == 0 {
		b.WriteString("\nNo recent news was found for this stock.\n")
		return b.String()
	}

	b.WriteString("\nRecent news:\n")
	for i, item := range in.News {
		fmt.Fprintf(&b, "\n[%d] %s\n", i+1, item.Title)
		if i < len(in.Articles) && in.Articles[i].Text != "" {
			fmt.Fprintf(&b, "%s\n", truncate(in.Articles[i].Text, maxExcerptLen))
		} else if item.Snippet != "" {
			fmt.Fprintf(&b, "%s\n", truncate(item.Snippet, maxExcerptLen))
		}
	}
	return b.String()
}

func buildSummaryPrompt(in interfaces.SummaryInput) string {
	var b strings.Builder
	if in.FirstName != "" {
		fmt.Fprintf(&b, "The reader's first name is %s.\n", in.FirstName)
	}
	fmt.Fprintf(&b, "Total portfolio value: %s\n", common.FormatMoney(in.TotalValue))
	fmt.Fprintf(&b, "Weekly change: %s (%s)\n",
		common.FormatSignedMoney(in.WeeklyChange), common.FormatSignedPct(in.WeeklyChangePct))

	if len(in.Holdings) > 0 {
		b.WriteString("\nHoldings this week:\n")
		for _, h := range in.Holdings {
			fmt.Fprintf(&b, "- %s: %s, weekly %s, recommendation %s. %s\n",
				h.Symbol, common.FormatMoney(h.Value),
				common.FormatSignedPct(h.WeeklyChangePct),
				h.Recommendation, truncate(h.Summary, 200))
		}
	}
	if len(in.Watchlist) > 0 {
		b.WriteString("\nWatchlist this week:\n")
		for _, w := range in.Watchlist {
			fmt.Fprintf(&b, "- %s: weekly %s, recommendation %s. %s\n",
				w.Symbol, common.FormatSignedPct(w.WeeklyChangePct),
				w.Recommendation, truncate(w.Summary, 200))
		}
	}
	b.WriteString("\nWrite the overview paragraph for this week's digest.")
	return b.String()
}

// parseAnalysisResponse extracts the RECOMMENDATION and ANALYSIS lines.
// Anything unrecognised coerces to HOLD; a missing ANALYSIS line leaves
// the summary empty for the caller's fallback.
func parseAnalysisResponse(raw string) (models.Recommendation, string) {
	rec := models.RecommendationHold
	var summary string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, "RECOMMENDATION:"):
			rec = models.ParseRecommendation(strings.TrimSpace(line[len("RECOMMENDATION:"):]))
		case strings.HasPrefix(upper, "ANALYSIS:"):
			summary = strings.TrimSpace(line[len("ANALYSIS:"):])
		}
	}
	return rec, summary
}

func fallbackSummary(ticker string) string {
	return fmt.Sprintf("No analysis is available for %s this week.", ticker)
}

func newsURLs(items []models.NewsItem) []string {
	urls := make([]string, 0, len(items))
	for _, item := range items {
		if item.URL != "" {
			urls = append(urls, item.URL)
		}
	}
	return urls
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
