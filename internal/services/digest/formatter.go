package digest

import (
	"fmt"
	"html"
	"strings"

	"github.com/finbrief/finbrief/internal/common"
	"github.com/finbrief/finbrief/internal/models"
)

const (
	colorGain = "#1e7e34"
	colorLoss = "#c82333"

	badgeBuy  = "#1e7e34"
	badgeSell = "#c82333"
	badgeHold = "#6c757d"
)

// RenderDigestHTML renders the weekly digest email body. The document
// structure is fixed: branding header, greeting, optional overview,
// aggregate metrics, holdings, watchlist, footer disclaimer.
func RenderDigestHTML(user *models.User, digest *models.PortfolioDigest) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html><html><body style=\"font-family: Arial, sans-serif; color: #212529; max-width: 640px; margin: 0 auto;\">")

	// Branding header
	b.WriteString("<div style=\"background-color: #1a2b4a; padding: 24px; text-align: center;\">")
	b.WriteString("<h1 style=\"color: #ffffff; margin: 0;\">Finbrief</h1>")
	b.WriteString("<p style=\"color: #aab8d0; margin: 4px 0 0 0;\">Your Weekly Portfolio Digest</p>")
	b.WriteString("</div>")

	// Greeting
	fmt.Fprintf(&b, "<p style=\"font-size: 16px;\">Hi %s,</p>", html.EscapeString(user.FirstName()))

	// Optional AI overview
	if digest.PortfolioOverview != "" {
		b.WriteString("<div style=\"background-color: #f3f6fb; border-left: 4px solid #1a2b4a; padding: 12px 16px; margin: 16px 0;\">")
		fmt.Fprintf(&b, "<p style=\"margin: 0;\">%s</p>", html.EscapeString(digest.PortfolioOverview))
		b.WriteString("</div>")
	}

	// Aggregate metrics
	changeColor := colorGain
	if digest.WeeklyPortfolioChange < 0 {
		changeColor = colorLoss
	}
	b.WriteString("<div style=\"padding: 16px; border: 1px solid #dee2e6; border-radius: 6px; margin: 16px 0;\">")
	fmt.Fprintf(&b, "<p style=\"margin: 0; font-size: 14px; color: #6c757d;\">Total Portfolio Value</p>")
	fmt.Fprintf(&b, "<p style=\"margin: 4px 0; font-size: 24px; font-weight: bold;\">%s</p>", common.FormatMoney(digest.TotalPortfolioValue))
	fmt.Fprintf(&b, "<p style=\"margin: 0; color: %s; font-weight: bold;\">%s (%s) this week</p>",
		changeColor,
		common.FormatSignedMoney(digest.WeeklyPortfolioChange),
		common.FormatSignedPct(digest.WeeklyPortfolioChangePct))
	b.WriteString("</div>")

	// Holdings
	if len(digest.Holdings) > 0 {
		b.WriteString("<h2 style=\"border-bottom: 2px solid #1a2b4a; padding-bottom: 4px;\">Your Holdings</h2>")
		for _, entry := range digest.Holdings {
			writeEntry(&b, entry, true)
		}
	}

	// Watchlist
	if len(digest.Watchlist) > 0 {
		b.WriteString("<h2 style=\"border-bottom: 2px solid #1a2b4a; padding-bottom: 4px;\">Your Watchlist</h2>")
		for _, entry := range digest.Watchlist {
			writeEntry(&b, entry, false)
		}
	}

	// Footer disclaimer
	b.WriteString("<hr style=\"border: none; border-top: 1px solid #dee2e6; margin: 24px 0;\">")
	b.WriteString("<p style=\"font-size: 12px; color: #6c757d;\">This digest is generated automatically for informational purposes only and is not financial advice. Always do your own research before making investment decisions.</p>")
	b.WriteString("</body></html>")

	return b.String()
}

func writeEntry(b *strings.Builder, entry models.DigestEntry, held bool) {
	b.WriteString("<div style=\"padding: 16px; border: 1px solid #dee2e6; border-radius: 6px; margin: 12px 0;\">")

	name := entry.CompanyName
	if name == "" {
		name = entry.Symbol
	}
	fmt.Fprintf(b, "<p style=\"margin: 0;\"><strong style=\"font-size: 16px;\">%s</strong> <span style=\"color: #6c757d;\">%s</span>%s</p>",
		html.EscapeString(entry.Symbol), html.EscapeString(name), recommendationBadge(entry.Recommendation))

	weeklyColor := colorGain
	if entry.WeeklyChange < 0 {
		weeklyColor = colorLoss
	}
	fmt.Fprintf(b, "<p style=\"margin: 8px 0 0 0;\">%s <span style=\"color: %s;\">(%s this week)</span></p>",
		common.FormatMoney(entry.CurrentPrice), weeklyColor, common.FormatSignedPct(entry.WeeklyChangePct))

	if held {
		valueColor := colorGain
		if entry.WeeklyValueChange < 0 {
			valueColor = colorLoss
		}
		fmt.Fprintf(b, "<p style=\"margin: 4px 0 0 0; font-size: 14px;\">%s shares &middot; %s <span style=\"color: %s;\">(%s)</span></p>",
			formatShares(entry.Shares), common.FormatMoney(entry.Value),
			valueColor, common.FormatSignedMoney(entry.WeeklyValueChange))
	} else {
		b.WriteString("<p style=\"margin: 4px 0 0 0; font-size: 13px; color: #6c757d;\">On your watchlist because you marked it for research.</p>")
	}

	if entry.Summary != "" {
		fmt.Fprintf(b, "<p style=\"margin: 8px 0 0 0; font-size: 14px;\">%s</p>", html.EscapeString(entry.Summary))
	}

	if len(entry.NewsURLs) > 0 {
		b.WriteString("<p style=\"margin: 8px 0 0 0; font-size: 13px;\">")
		for i, url := range entry.NewsURLs {
			if i > 0 {
				b.WriteString(" &middot; ")
			}
			fmt.Fprintf(b, "<a href=\"%s\" style=\"color: #1a5fb4;\">article %d</a>", html.EscapeString(url), i+1)
		}
		b.WriteString("</p>")
	}

	b.WriteString("</div>")
}

func recommendationBadge(rec models.Recommendation) string {
	color := badgeHold
	switch rec {
	case models.RecommendationBuy:
		color = badgeBuy
	case models.RecommendationSell:
		color = badgeSell
	}
	return fmt.Sprintf(" <span style=\"background-color: %s; color: #ffffff; padding: 2px 8px; border-radius: 4px; font-size: 12px; font-weight: bold;\">%s</span>", color, rec)
}

// formatShares drops trailing zeros so whole-share positions read "10"
// and fractional ones read "10.5".
func formatShares(shares float64) string {
	s := fmt.Sprintf("%.4f", shares)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
