package types

import "fmt"

// View is one of the navigable screens.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewReport    View = "report"
	ViewForecast  View = "forecast"
	ViewVastu     View = "vastu"
	ViewRemedies  View = "remedies"
	ViewChat      View = "chat"
)

// Views lists every view in navigation order.
var Views = []View{ViewDashboard, ViewReport, ViewForecast, ViewVastu, ViewRemedies, ViewChat}

// ParseView resolves a view name.
func ParseView(s string) (View, error) {
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// ReportKind identifies a generated report type.
type ReportKind string

const (
	KindCore        ReportKind = "core"
	KindProfile     ReportKind = "profile"
	KindPredictions ReportKind = "predictions"
	KindVastu       ReportKind = "vastu"
	KindRemedies    ReportKind = "remedies"
	KindDailyPulse  ReportKind = "daily_pulse"
)

// ContextLabel is the human label sent with translation requests.
func (k ReportKind) ContextLabel() string {
	switch k {
	case KindCore:
		return "Numerology Report"
	case KindPredictions:
		return "Predictions Report"
	case KindVastu:
		return "Vastu Report"
	case KindRemedies:
		return "Remedies Report"
	case KindDailyPulse:
		return "Daily Pulse"
	case KindProfile:
		return "Profile Traits"
	}
	return string(k)
}

// ParseReportKind resolves a report kind name.
func ParseReportKind(s string) (ReportKind, error) {
	switch k := ReportKind(s); k {
	case KindCore, KindProfile, KindPredictions, KindVastu, KindRemedies, KindDailyPulse:
		return k, nil
	}
	return "", fmt.Errorf("unknown report kind %q", s)
}
