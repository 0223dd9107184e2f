package gateway

import "google.golang.org/genai"

// Response schemas, one per report type. Field names match the JSON tags
// in internal/types.

func stringField(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func integerField(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeInteger, Description: desc}
}

func listOf(items *genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: items}
}

// object builds an object schema; every property is required and ordered
// as given.
func object(props ...prop) *genai.Schema {
	s := &genai.Schema{Type: genai.TypeObject, Properties: make(map[string]*genai.Schema, len(props))}
	for _, p := range props {
		s.Properties[p.name] = p.schema
		s.Required = append(s.Required, p.name)
		s.PropertyOrdering = append(s.PropertyOrdering, p.name)
	}
	return s
}

// optional marks trailing known properties as not required.
func optional(s *genai.Schema, names ...string) *genai.Schema {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	kept := s.Required[:0]
	for _, r := range s.Required {
		if !drop[r] {
			kept = append(kept, r)
		}
	}
	s.Required = kept
	return s
}

type prop struct {
	name   string
	schema *genai.Schema
}

func field(name string, schema *genai.Schema) prop { return prop{name: name, schema: schema} }

func calculationSchema() *genai.Schema {
	return object(
		field("number", integerField("The reduced number (master numbers 11, 22, 33 are kept)")),
		field("steps", stringField("Step-by-step derivation")),
	)
}

func interpretationSchema() *genai.Schema {
	return optional(object(
		field("title", stringField("Short archetype title")),
		field("keywords", stringField("Comma-separated keywords")),
		field("interpretation", stringField("Narrative interpretation")),
		field("strengths", stringField("")),
		field("challenges", stringField("")),
		field("advice", stringField("")),
	), "strengths", "challenges", "advice")
}

func systemSchema() *genai.Schema {
	core := func(f func() *genai.Schema) *genai.Schema {
		return object(
			field("lifePath", f()),
			field("destiny", f()),
			field("soulUrge", f()),
			field("personality", f()),
		)
	}
	return object(
		field("calculations", core(calculationSchema)),
		field("interpretations", core(interpretationSchema)),
	)
}

// CoreReportSchema describes types.CoreReport.
func CoreReportSchema() *genai.Schema {
	return object(
		field("pythagorean", systemSchema()),
		field("chaldean", systemSchema()),
		field("quickRemedies", listOf(object(
			field("title", stringField("")),
			field("description", stringField("")),
			field("type", &genai.Schema{
				Type: genai.TypeString,
				Enum: []string{"Gemstone", "Mantra", "Activity", "Reflection"},
			}),
		))),
		field("summary", stringField("Synthesis of both systems")),
	)
}

// ProfileTraitsSchema describes types.ProfileTraits.
func ProfileTraitsSchema() *genai.Schema {
	return object(
		field("luckyColor", object(
			field("name", stringField("")),
			field("hex", stringField("Hex color code such as #4B0082")),
		)),
		field("luckyNumber", integerField("")),
		field("cardinalDirection", stringField("")),
	)
}

// PredictionsSchema describes types.PredictionsReport.
func PredictionsSchema() *genai.Schema {
	return object(
		field("personalYear", object(
			field("number", integerField("")),
			field("theme", stringField("")),
			field("overview", stringField("")),
		)),
		field("monthlyForecast", listOf(object(
			field("month", stringField("Month name")),
			field("number", integerField("Personal month number")),
			field("keywords", stringField("")),
			field("forecast", stringField("")),
		))),
	)
}

// SpatialHarmonySchema describes types.SpatialHarmonyReport.
func SpatialHarmonySchema() *genai.Schema {
	return object(
		field("favorableDirections", listOf(stringField(""))),
		field("homeHarmony", listOf(object(
			field("room", stringField("")),
			field("tip", stringField("")),
		))),
		field("avoid", listOf(stringField(""))),
	)
}

// RemediesSchema describes types.RemediesReport.
func RemediesSchema() *genai.Schema {
	return object(
		field("gemstones", listOf(object(
			field("name", stringField("")),
			field("wearing_instructions", stringField("")),
		))),
		field("mantras", listOf(object(
			field("sanskrit", stringField("")),
			field("transliteration", stringField("")),
			field("benefit", stringField("")),
		))),
		field("rudraksha", object(
			field("mukhi", stringField("")),
			field("benefit", stringField("")),
		)),
		field("actions", listOf(object(
			field("title", stringField("")),
			field("description", stringField("")),
		))),
	)
}

// DailyPulseSchema describes types.DailyPulse.
func DailyPulseSchema() *genai.Schema {
	return object(
		field("number_of_day", object(
			field("number", integerField("")),
			field("keywords", stringField("")),
		)),
		field("cosmic_influence", object(
			field("title", stringField("")),
			field("description", stringField("")),
		)),
	)
}
