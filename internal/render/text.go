// Package render formats reports for export and for the terminal.
//
// Text renders the plain-text download format. Markdown renders the same
// content for glamour.
package render

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"numerologyx/internal/types"
)

const (
	rule   = "----------------------------------------"
	footer = "Powered by NumerologyX"
)

var whitespace = regexp.MustCompile(`\s+`)

// Filename returns the download name for a report of kind. year is only
// used for predictions.
func Filename(kind types.ReportKind, id types.Identity, year int) string {
	name := whitespace.ReplaceAllString(strings.TrimSpace(id.FullName), "_")
	if name == "" {
		name = "User"
	}
	switch kind {
	case types.KindPredictions:
		return fmt.Sprintf("%s_Forecast_%d.txt", name, year)
	case types.KindVastu:
		return name + "_Vastu_Report.txt"
	case types.KindRemedies:
		return name + "_Remedies_Report.txt"
	case types.KindDailyPulse:
		return name + "_Daily_Pulse.txt"
	}
	return name + "_NumerologyReport.txt"
}

func displayName(id types.Identity, fallback string) string {
	if n := strings.TrimSpace(id.FullName); n != "" {
		return n
	}
	return fallback
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// coreNumbers pairs each core number with its label in display order.
func coreNumbers(sys *types.SystemReport) []struct {
	label  string
	calc   types.CalculationDetail
	interp types.Interpretation
} {
	c, in := sys.Calculations, sys.Interpretations
	return []struct {
		label  string
		calc   types.CalculationDetail
		interp types.Interpretation
	}{
		{"Life Path", c.LifePath, in.LifePath},
		{"Destiny", c.Destiny, in.Destiny},
		{"Soul Urge", c.SoulUrge, in.SoulUrge},
		{"Personality", c.Personality, in.Personality},
	}
}

// CoreReportText renders the numerology report download.
func CoreReportText(r *types.CoreReport, id types.Identity, generated time.Time) string {
	if r.Validate() != nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "NUMEROLOGY REPORT for %s\n", displayName(id, "Valued User"))
	fmt.Fprintf(&b, "Generated on: %s\n%s\n\n", generated.Format(types.DateLayout), rule)
	fmt.Fprintf(&b, "SUMMARY:\n%s\n\n", r.Summary)

	for _, sys := range []struct {
		title string
		r     *types.SystemReport
	}{{"PYTHAGOREAN SYSTEM", r.Pythagorean}, {"CHALDEAN SYSTEM", r.Chaldean}} {
		fmt.Fprintf(&b, "%s\n%s\n%s\n", rule, sys.title, rule)
		for _, n := range coreNumbers(sys.r) {
			fmt.Fprintf(&b, "%s: %d\n", n.label, n.calc.Number)
			fmt.Fprintf(&b, "%s - %s\n", n.label, n.interp.Title)
			fmt.Fprintf(&b, "Keywords: %s\n", n.interp.Keywords)
			fmt.Fprintf(&b, "Overview: %s\n", n.interp.Interpretation)
			fmt.Fprintf(&b, "Strengths: %s\n", orNA(n.interp.Strengths))
			fmt.Fprintf(&b, "Challenges: %s\n", orNA(n.interp.Challenges))
			fmt.Fprintf(&b, "Advice: %s\n\n", orNA(n.interp.Advice))
		}
	}

	fmt.Fprintf(&b, "%s\nQUICK REMEDIES\n%s\n", rule, rule)
	for _, rem := range r.QuickRemedies {
		fmt.Fprintf(&b, "- %s (%s): %s\n", rem.Title, rem.Type, rem.Description)
	}
	fmt.Fprintf(&b, "\n%s\n%s\n", rule, footer)
	return b.String()
}

// PredictionsText renders the yearly forecast download.
func PredictionsText(p *types.PredictionsReport, id types.Identity) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "FORECAST FOR YEAR %d\n", p.PersonalYear.Number)
	fmt.Fprintf(&b, "Name: %s\n", displayName(id, "User"))
	fmt.Fprintf(&b, "Theme: %s\n\n", p.PersonalYear.Theme)
	fmt.Fprintf(&b, "OVERVIEW:\n%s\n\n", p.PersonalYear.Overview)
	b.WriteString("MONTHLY FORECASTS:\n")
	months := make([]string, len(p.MonthlyForecast))
	for i, m := range p.MonthlyForecast {
		months[i] = fmt.Sprintf("%s (Personal Month %d): %s", m.Month, m.Number, m.Forecast)
	}
	b.WriteString(strings.Join(months, "\n\n"))
	fmt.Fprintf(&b, "\n\n%s\n", footer)
	return b.String()
}

// SpatialHarmonyText renders the Vastu report download.
func SpatialHarmonyText(r *types.SpatialHarmonyReport, id types.Identity) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "VASTU REPORT for %s\n%s\n\n", displayName(id, "User"), rule)
	fmt.Fprintf(&b, "FAVORABLE DIRECTIONS:\n%s\n\n", strings.Join(r.FavorableDirections, ", "))
	b.WriteString("HOME HARMONY:\n")
	for _, tip := range r.HomeHarmony {
		fmt.Fprintf(&b, "- %s: %s\n", tip.Room, tip.Tip)
	}
	b.WriteString("\nAVOID:\n")
	for _, a := range r.Avoid {
		fmt.Fprintf(&b, "- %s\n", a)
	}
	fmt.Fprintf(&b, "\n%s\n", footer)
	return b.String()
}

// RemediesText renders the remedies report download.
func RemediesText(r *types.RemediesReport, id types.Identity) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "REMEDIES REPORT for %s\n%s\n\n", displayName(id, "User"), rule)
	b.WriteString("GEMSTONES:\n")
	for _, g := range r.Gemstones {
		fmt.Fprintf(&b, "- %s: %s\n", g.Name, g.WearingInstructions)
	}
	b.WriteString("\nMANTRAS:\n")
	for _, m := range r.Mantras {
		fmt.Fprintf(&b, "- %s (%s): %s\n", m.Sanskrit, m.Transliteration, m.Benefit)
	}
	fmt.Fprintf(&b, "\nRUDRAKSHA:\n%s Mukhi: %s\n\n", r.Rudraksha.Mukhi, r.Rudraksha.Benefit)
	b.WriteString("KARMIC ACTIONS:\n")
	for _, a := range r.Actions {
		fmt.Fprintf(&b, "- %s: %s\n", a.Title, a.Description)
	}
	fmt.Fprintf(&b, "\n%s\n", footer)
	return b.String()
}

// DailyPulseText renders the daily pulse.
func DailyPulseText(p *types.DailyPulse, date string) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "DAILY COSMIC PULSE %s\n%s\n", date, rule)
	fmt.Fprintf(&b, "Number of the day: %d (%s)\n\n", p.NumberOfDay.Number, p.NumberOfDay.Keywords)
	fmt.Fprintf(&b, "%s\n%s\n", p.CosmicInfluence.Title, p.CosmicInfluence.Description)
	return b.String()
}

// Text renders any report value in its download format.
func Text(report interface{}, id types.Identity, now time.Time) string {
	switch r := report.(type) {
	case *types.CoreReport:
		return CoreReportText(r, id, now)
	case types.CoreReport:
		return CoreReportText(&r, id, now)
	case *types.PredictionsReport:
		return PredictionsText(r, id)
	case types.PredictionsReport:
		return PredictionsText(&r, id)
	case *types.SpatialHarmonyReport:
		return SpatialHarmonyText(r, id)
	case types.SpatialHarmonyReport:
		return SpatialHarmonyText(&r, id)
	case *types.RemediesReport:
		return RemediesText(r, id)
	case types.RemediesReport:
		return RemediesText(&r, id)
	case *types.DailyPulse:
		return DailyPulseText(r, types.DateKey(now))
	}
	return ""
}
