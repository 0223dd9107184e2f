package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"numerologyx/internal/types"
)

// Markdown renders a report value as markdown. Unknown values yield "".
func Markdown(report interface{}) string {
	var b strings.Builder
	switch r := report.(type) {
	case *types.CoreReport:
		if r.Validate() != nil {
			return ""
		}
		fmt.Fprintf(&b, "# Numerology Report\n\n%s\n\n", r.Summary)
		for _, sys := range []struct {
			title string
			r     *types.SystemReport
		}{{"Pythagorean", r.Pythagorean}, {"Chaldean", r.Chaldean}} {
			fmt.Fprintf(&b, "## %s\n\n", sys.title)
			for _, n := range coreNumbers(sys.r) {
				fmt.Fprintf(&b, "### %s %d: %s\n\n", n.label, n.calc.Number, n.interp.Title)
				if n.interp.Keywords != "" {
					fmt.Fprintf(&b, "*%s*\n\n", n.interp.Keywords)
				}
				fmt.Fprintf(&b, "%s\n\n", n.interp.Interpretation)
				if n.calc.Steps != "" {
					fmt.Fprintf(&b, "> %s\n\n", n.calc.Steps)
				}
			}
		}
		if len(r.QuickRemedies) > 0 {
			b.WriteString("## Quick Remedies\n\n")
			for _, rem := range r.QuickRemedies {
				fmt.Fprintf(&b, "- **%s** (%s): %s\n", rem.Title, rem.Type, rem.Description)
			}
		}
	case types.CoreReport:
		return Markdown(&r)
	case *types.ProfileTraits:
		fmt.Fprintf(&b, "## Cosmic Traits\n\n- Lucky color: %s (`%s`)\n- Lucky number: %d\n- Direction: %s\n",
			r.LuckyColor.Name, r.LuckyColor.Hex, r.LuckyNumber, r.CardinalDirection)
	case *types.PredictionsReport:
		fmt.Fprintf(&b, "# Personal Year %d: %s\n\n%s\n\n", r.PersonalYear.Number, r.PersonalYear.Theme, r.PersonalYear.Overview)
		for _, m := range r.MonthlyForecast {
			fmt.Fprintf(&b, "### %s (month %d)\n\n", m.Month, m.Number)
			if m.Keywords != "" {
				fmt.Fprintf(&b, "*%s*\n\n", m.Keywords)
			}
			fmt.Fprintf(&b, "%s\n\n", m.Forecast)
		}
	case types.PredictionsReport:
		return Markdown(&r)
	case *types.SpatialHarmonyReport:
		fmt.Fprintf(&b, "# Vastu Report\n\n**Favorable directions:** %s\n\n## Home Harmony\n\n", strings.Join(r.FavorableDirections, ", "))
		for _, tip := range r.HomeHarmony {
			fmt.Fprintf(&b, "- **%s**: %s\n", tip.Room, tip.Tip)
		}
		b.WriteString("\n## Avoid\n\n")
		for _, a := range r.Avoid {
			fmt.Fprintf(&b, "- %s\n", a)
		}
	case types.SpatialHarmonyReport:
		return Markdown(&r)
	case *types.RemediesReport:
		b.WriteString("# Remedies\n\n## Gemstones\n\n")
		for _, g := range r.Gemstones {
			fmt.Fprintf(&b, "- **%s**: %s\n", g.Name, g.WearingInstructions)
		}
		b.WriteString("\n## Mantras\n\n")
		for _, m := range r.Mantras {
			fmt.Fprintf(&b, "- %s (*%s*): %s\n", m.Sanskrit, m.Transliteration, m.Benefit)
		}
		fmt.Fprintf(&b, "\n## Rudraksha\n\n%s Mukhi: %s\n\n## Karmic Actions\n\n", r.Rudraksha.Mukhi, r.Rudraksha.Benefit)
		for _, a := range r.Actions {
			fmt.Fprintf(&b, "- **%s**: %s\n", a.Title, a.Description)
		}
	case types.RemediesReport:
		return Markdown(&r)
	case *types.DailyPulse:
		fmt.Fprintf(&b, "## Daily Pulse: %d\n\n*%s*\n\n**%s**\n\n%s\n",
			r.NumberOfDay.Number, r.NumberOfDay.Keywords, r.CosmicInfluence.Title, r.CosmicInfluence.Description)
	case []types.ChatMessage:
		for _, m := range r {
			who := "**You**"
			if m.Role == types.RoleAssistant {
				who = "**Guide**"
			}
			fmt.Fprintf(&b, "%s: %s\n\n", who, m.Text)
			for _, s := range m.Sources {
				fmt.Fprintf(&b, "- [%s](%s)\n", s.Title, s.URI)
			}
			if len(m.Sources) > 0 {
				b.WriteString("\n")
			}
		}
	default:
		return ""
	}
	return b.String()
}

// Terminal renders markdown for a terminal of the given width.
func Terminal(markdown string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(markdown)
}
