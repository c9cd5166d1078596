package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/cardwise/internal/insight"
	"github.com/Veraticus/cardwise/internal/model"
	"github.com/Veraticus/cardwise/internal/recommend"
)

// NoResultsMessage is shown when a run produced no recommendation.
const NoResultsMessage = "No matching cards found. Try asking about a spending category, like dining or travel."

// FormatResult renders a recommendation run for the terminal.
func FormatResult(result *recommend.Result) string {
	if result == nil || len(result.Recommendations) == 0 {
		return FormatWarning(NoResultsMessage)
	}

	var b strings.Builder
	b.WriteString(FormatTitle(fmt.Sprintf("Recommendations for %q", result.Query)))
	b.WriteString("\n")

	if result.Insight != nil && len(result.Insight.Top) > 0 {
		b.WriteString(SubtleStyle.Render(ChartIcon + " Top spending: " + insight.FormatTop(*result.Insight)))
		b.WriteString("\n\n")
	}

	for _, rec := range result.Recommendations {
		b.WriteString(FormatRecommendation(rec))
		b.WriteString("\n")
	}

	if result.Summary != "" {
		b.WriteString(RenderBox(RobotIcon+" Summary", result.Summary))
		b.WriteString("\n")
	}

	if result.Saved {
		b.WriteString(FormatSuccess("Saved to your recommendation history"))
		b.WriteString("\n")
	}

	return b.String()
}

// FormatRecommendation renders one ranked card.
func FormatRecommendation(rec recommend.Recommendation) string {
	var b strings.Builder

	name := rec.Details.Name
	if name == "" {
		name = rec.CardID
	}
	fmt.Fprintf(&b, "%s %s", BoldStyle.Render(fmt.Sprintf("%d. %s", rec.Rank, name)), ScoreStyle.Render(fmt.Sprintf("%.3f", rec.Score)))
	if rec.Details.Issuer != "" {
		b.WriteString(SubtleStyle.Render(" · " + rec.Details.Issuer))
	}
	b.WriteString(SubtleStyle.Render(" [" + string(rec.Origin) + "]"))
	b.WriteString("\n")

	for _, pb := range rec.Benefits {
		if pb.Description == "" {
			fmt.Fprintf(&b, "   • %s\n", pb.Category)
			continue
		}
		fmt.Fprintf(&b, "   • %s: %s\n", BoldStyle.Render(pb.Category), pb.Description)
	}

	if rec.Reason != "" {
		b.WriteString("   ")
		b.WriteString(InfoStyle.Render(rec.Reason))
		b.WriteString("\n")
	}

	return b.String()
}

// FormatCard renders the full details of one card.
func FormatCard(card *model.Candidate, benefits []model.ParsedBenefit) string {
	var lines []string
	if card.Issuer != "" {
		lines = append(lines, "Issuer: "+card.Issuer)
	}
	if card.Type != "" {
		lines = append(lines, "Type: "+card.Type)
	}
	for _, pb := range benefits {
		if pb.Description == "" {
			lines = append(lines, "• "+pb.Category)
			continue
		}
		lines = append(lines, "• "+pb.Category+": "+pb.Description)
	}
	if card.DetailedBenefits != "" {
		lines = append(lines, "", card.DetailedBenefits)
	}
	if card.ImageURL != "" {
		lines = append(lines, "", SubtleStyle.Render(card.ImageURL))
	}

	title := card.Name
	if title == "" {
		title = card.CardID
	}
	return RenderBox(CardIcon+" "+title, strings.Join(lines, "\n"))
}
