// Package types provides the report records shared across numerologyX packages.
// This package exists to break import cycles between gateway, store, chat and session.
// Types in this package should be plain data structures with no service dependencies.
package types

import (
	"errors"
	"fmt"
)

// =============================================================================
// CORE REPORT
// =============================================================================

// CalculationDetail is one computed number plus the derivation trace.
type CalculationDetail struct {
	Number int    `json:"number"`
	Steps  string `json:"steps"`
}

// Calculations holds the four core numbers of one naming system.
type Calculations struct {
	LifePath    CalculationDetail `json:"lifePath"`
	Destiny     CalculationDetail `json:"destiny"`
	SoulUrge    CalculationDetail `json:"soulUrge"`
	Personality CalculationDetail `json:"personality"`
}

// Interpretation explains one core number.
type Interpretation struct {
	Title          string `json:"title"`
	Keywords       string `json:"keywords"`
	Interpretation string `json:"interpretation"`
	Strengths      string `json:"strengths,omitempty"`
	Challenges     string `json:"challenges,omitempty"`
	Advice         string `json:"advice,omitempty"`
}

// Interpretations mirrors Calculations, one Interpretation per core number.
type Interpretations struct {
	LifePath    Interpretation `json:"lifePath"`
	Destiny     Interpretation `json:"destiny"`
	SoulUrge    Interpretation `json:"soulUrge"`
	Personality Interpretation `json:"personality"`
}

// SystemReport is the result for one naming system (Pythagorean or Chaldean).
type SystemReport struct {
	Calculations    *Calculations    `json:"calculations"`
	Interpretations *Interpretations `json:"interpretations"`
}

// RemedyType classifies a quick remedy.
type RemedyType string

const (
	RemedyGemstone   RemedyType = "Gemstone"
	RemedyMantra     RemedyType = "Mantra"
	RemedyActivity   RemedyType = "Activity"
	RemedyReflection RemedyType = "Reflection"
)

// Remedy is a short actionable suggestion attached to the core report.
type Remedy struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        RemedyType `json:"type"`
}

// CoreReport is the primary numerology result for one Identity.
type CoreReport struct {
	Pythagorean   *SystemReport `json:"pythagorean"`
	Chaldean      *SystemReport `json:"chaldean"`
	QuickRemedies []Remedy      `json:"quickRemedies"`
	Summary       string        `json:"summary"`
}

// ErrIncompleteReport is returned when a CoreReport lacks a required section.
var ErrIncompleteReport = errors.New("incomplete core report")

// Validate checks that both naming systems are present with their calculations
// and interpretations.
func (r *CoreReport) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: report is empty", ErrIncompleteReport)
	}
	systems := []struct {
		name string
		sys  *SystemReport
	}{{"pythagorean", r.Pythagorean}, {"chaldean", r.Chaldean}}
	for _, entry := range systems {
		name, sys := entry.name, entry.sys
		if sys == nil {
			return fmt.Errorf("%w: missing %s system", ErrIncompleteReport, name)
		}
		if sys.Calculations == nil {
			return fmt.Errorf("%w: missing %s calculations", ErrIncompleteReport, name)
		}
		if sys.Interpretations == nil {
			return fmt.Errorf("%w: missing %s interpretations", ErrIncompleteReport, name)
		}
	}
	return nil
}

// PrimaryCalculations returns the Pythagorean calculations, which drive the
// profile traits. Returns nil when the report is incomplete.
func (r *CoreReport) PrimaryCalculations() *Calculations {
	if r == nil || r.Pythagorean == nil {
		return nil
	}
	return r.Pythagorean.Calculations
}

// =============================================================================
// DERIVED REPORTS
// =============================================================================

// LuckyColor is a named color with its hex code.
type LuckyColor struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// ProfileTraits are derived from the primary-system calculations.
type ProfileTraits struct {
	LuckyColor        LuckyColor `json:"luckyColor"`
	LuckyNumber       int        `json:"luckyNumber"`
	CardinalDirection string     `json:"cardinalDirection"`
}

// PersonalYear describes the theme of a forecast year.
type PersonalYear struct {
	Number   int    `json:"number"`
	Theme    string `json:"theme"`
	Overview string `json:"overview"`
}

// PredictionMonth is one month of the yearly forecast.
type PredictionMonth struct {
	Month    string `json:"month"`
	Number   int    `json:"number"`
	Keywords string `json:"keywords"`
	Forecast string `json:"forecast"`
}

// PredictionsReport is the personal-year forecast for a requested year.
type PredictionsReport struct {
	PersonalYear    PersonalYear      `json:"personalYear"`
	MonthlyForecast []PredictionMonth `json:"monthlyForecast"`
}

// RoomTip is spatial-harmony advice for one room.
type RoomTip struct {
	Room string `json:"room"`
	Tip  string `json:"tip"`
}

// SpatialHarmonyReport is the Vastu advice for an Identity.
type SpatialHarmonyReport struct {
	FavorableDirections []string  `json:"favorableDirections"`
	HomeHarmony         []RoomTip `json:"homeHarmony"`
	Avoid               []string  `json:"avoid"`
}

// Gemstone is a recommended stone with wearing instructions.
type Gemstone struct {
	Name                string `json:"name"`
	WearingInstructions string `json:"wearing_instructions"`
}

// Mantra is a recommended chant.
type Mantra struct {
	Sanskrit        string `json:"sanskrit"`
	Transliteration string `json:"transliteration"`
	Benefit         string `json:"benefit"`
}

// Rudraksha is the recommended bead.
type Rudraksha struct {
	Mukhi   string `json:"mukhi"`
	Benefit string `json:"benefit"`
}

// KarmicAction is a recommended practice.
type KarmicAction struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// RemediesReport is the detailed remedies set for an Identity.
type RemediesReport struct {
	Gemstones []Gemstone     `json:"gemstones"`
	Mantras   []Mantra       `json:"mantras"`
	Rudraksha Rudraksha      `json:"rudraksha"`
	Actions   []KarmicAction `json:"actions"`
}

// DayNumber is the number of the day with its keywords.
type DayNumber struct {
	Number   int    `json:"number"`
	Keywords string `json:"keywords"`
}

// CosmicInfluence is the day's headline influence.
type CosmicInfluence struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DailyPulse is the once-per-day snippet.
type DailyPulse struct {
	NumberOfDay     DayNumber       `json:"number_of_day"`
	CosmicInfluence CosmicInfluence `json:"cosmic_influence"`
}
