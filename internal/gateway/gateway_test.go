package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numerologyx/internal/config"
	"numerologyx/internal/translation"
	"numerologyx/internal/types"
)

const coreJSON = `{
  "pythagorean": {
    "calculations": {
      "lifePath": {"number": 8, "steps": "1+9+9+0+0+4+1+2 = 26, 2+6 = 8"},
      "destiny": {"number": 3, "steps": "..."},
      "soulUrge": {"number": 5, "steps": "..."},
      "personality": {"number": 7, "steps": "..."}
    },
    "interpretations": {
      "lifePath": {"title": "The Powerhouse", "keywords": "ambition", "interpretation": "..."},
      "destiny": {"title": "The Communicator", "keywords": "", "interpretation": ""},
      "soulUrge": {"title": "The Free Spirit", "keywords": "", "interpretation": ""},
      "personality": {"title": "The Seeker", "keywords": "", "interpretation": ""}
    }
  },
  "chaldean": {
    "calculations": {
      "lifePath": {"number": 8, "steps": ""},
      "destiny": {"number": 6, "steps": ""},
      "soulUrge": {"number": 1, "steps": ""},
      "personality": {"number": 5, "steps": ""}
    },
    "interpretations": {
      "lifePath": {"title": "The Powerhouse", "keywords": "", "interpretation": ""},
      "destiny": {"title": "The Nurturer", "keywords": "", "interpretation": ""},
      "soulUrge": {"title": "The Pioneer", "keywords": "", "interpretation": ""},
      "personality": {"title": "The Adventurer", "keywords": "", "interpretation": ""}
    }
  },
  "quickRemedies": [{"title": "Wear blue", "description": "Daily", "type": "Activity"}],
  "summary": "Driven and expressive."
}`

var asha = types.Identity{FullName: "Asha Rao", DOB: "1990-04-12"}

func newTestGateway(m Model) *Gateway {
	cfg := config.DefaultConfig()
	cfg.Gateway.Timeout = ""
	return NewWithModel(m, cfg)
}

func TestGateway_Unconfigured(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Gateway.APIKey = ""
	g, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, g.Configured())

	_, err = g.GenerateCoreReport(context.Background(), asha)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, KindConfiguration, KindOf(err))
	assert.Contains(t, err.Error(), "API key")

	_, err = g.GetDailyPulse(context.Background(), "2026-10-14")
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = g.StartConversation(context.Background(), "x")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestGateway_GenerateCoreReport(t *testing.T) {
	m := &fakeModel{replies: []string{coreJSON}}
	g := newTestGateway(m)

	report, err := g.GenerateCoreReport(context.Background(), types.Identity{FullName: "  Asha Rao ", DOB: "1990-04-12"})
	require.NoError(t, err)
	assert.Equal(t, 8, report.Pythagorean.Calculations.LifePath.Number)
	assert.Equal(t, "The Nurturer", report.Chaldean.Interpretations.Destiny.Title)
	assert.Equal(t, "Driven and expressive.", report.Summary)

	req := m.lastRequest()
	assert.Equal(t, "gemini-2.5-flash", req.Model)
	assert.Equal(t, "Full Name: Asha Rao\nDate of Birth: 1990-04-12", req.Prompt)
	assert.NotNil(t, req.Schema)
	assert.NotEmpty(t, req.System)
}

func TestGateway_GenerateCoreReport_InvalidIdentity(t *testing.T) {
	m := &fakeModel{}
	g := newTestGateway(m)

	_, err := g.GenerateCoreReport(context.Background(), types.Identity{FullName: "Asha", DOB: "12/04/1990"})
	assert.ErrorIs(t, err, types.ErrInvalidIdentity)
	assert.Empty(t, m.requests)
}

func TestGateway_GenerateCoreReport_MissingSystem(t *testing.T) {
	m := &fakeModel{replies: []string{`{"pythagorean": {"calculations": {}, "interpretations": {}}, "summary": "x"}`}}
	g := newTestGateway(m)

	_, err := g.GenerateCoreReport(context.Background(), asha)
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, types.ErrIncompleteReport)
	assert.NotErrorIs(t, err, ErrService)
}

func TestGateway_ServiceErrors(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
		kind  Kind
	}{
		{"not json", &fakeModel{replies: []string{"The stars say hello"}}, KindService},
		{"truncated json", &fakeModel{replies: []string{`{"pythagorean": {`}}, KindService},
		{"empty reply", &fakeModel{replies: []string{"   "}}, KindService},
		{"transport", &fakeModel{err: errors.New("connection reset")}, KindService},
		{"rejected key", &fakeModel{err: errors.New("googleapi: API key not valid. Please pass a valid API key.")}, KindConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGateway(tt.model)
			_, err := g.GenerateCoreReport(context.Background(), asha)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Len(t, tt.model.requests, 1, "no retries")
		})
	}
}

func TestGateway_GenerateProfileTraits(t *testing.T) {
	m := &fakeModel{replies: []string{`{"luckyColor":{"name":"Indigo","hex":"#4B0082"},"luckyNumber":8,"cardinalDirection":"South-West"}`}}
	g := newTestGateway(m)

	calc := &types.Calculations{
		LifePath: types.CalculationDetail{Number: 8}, Destiny: types.CalculationDetail{Number: 3},
		SoulUrge: types.CalculationDetail{Number: 5}, Personality: types.CalculationDetail{Number: 7},
	}
	traits, err := g.GenerateProfileTraits(context.Background(), calc)
	require.NoError(t, err)
	assert.Equal(t, "#4B0082", traits.LuckyColor.Hex)
	assert.Equal(t, 8, traits.LuckyNumber)
	assert.Contains(t, m.lastRequest().Prompt, "- Soul Urge: 5")

	_, err = g.GenerateProfileTraits(context.Background(), nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGateway_GeneratePredictions(t *testing.T) {
	m := &fakeModel{replies: []string{
		`{"personalYear":{"number":9,"theme":"Completion","overview":"..."},"monthlyForecast":[{"month":"January","number":1,"keywords":"start","forecast":"..."}]}`,
		`{"personalYear":{"number":9,"theme":"","overview":""},"monthlyForecast":[]}`,
	}}
	g := newTestGateway(m)

	p, err := g.GeneratePredictions(context.Background(), asha, 1850)
	require.NoError(t, err)
	assert.Equal(t, 9, p.PersonalYear.Number)
	assert.Contains(t, m.lastRequest().Prompt, "Forecast Year: 1850")

	_, err = g.GeneratePredictions(context.Background(), asha, 2027)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGateway_SpatialHarmonyRemediesPulse(t *testing.T) {
	m := &fakeModel{replies: []string{
		`{"favorableDirections":["North"],"homeHarmony":[{"room":"Kitchen","tip":"South-East"}],"avoid":["Clutter"]}`,
		`{"gemstones":[{"name":"Emerald","wearing_instructions":"Wednesday"}],"mantras":[],"rudraksha":{"mukhi":"5","benefit":"calm"},"actions":[]}`,
		`{"number_of_day":{"number":4,"keywords":"order"},"cosmic_influence":{"title":"Steady","description":"Build."}}`,
	}}
	g := newTestGateway(m)
	ctx := context.Background()

	v, err := g.GenerateSpatialHarmonyReport(ctx, asha)
	require.NoError(t, err)
	assert.Equal(t, []string{"North"}, v.FavorableDirections)

	r, err := g.GenerateRemediesReport(ctx, asha)
	require.NoError(t, err)
	assert.Equal(t, "Wednesday", r.Gemstones[0].WearingInstructions)

	p, err := g.GetDailyPulse(ctx, "2026-10-14")
	require.NoError(t, err)
	assert.Equal(t, 4, p.NumberOfDay.Number)
	assert.Equal(t, "Today's date is 2026-10-14.", m.lastRequest().Prompt)
}

func TestGateway_Translate(t *testing.T) {
	original, err := translation.Parse([]byte(`{"title":"The Seeker","number":7,"hex":"#4B0082","items":["calm","focus"]}`))
	require.NoError(t, err)

	m := &fakeModel{replies: []string{`{"title":"साधक","number":"सात","hex":"#000000","items":["शांत","ध्यान"]}`}}
	g := newTestGateway(m)

	hindi, err := translation.LookupLanguage("hi")
	require.NoError(t, err)
	got, err := g.Translate(context.Background(), original, hindi, "Numerology Report")
	require.NoError(t, err)

	data, err := got.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"साधक","number":7,"hex":"#4B0082","items":["शांत","ध्यान"]}`, string(data))

	req := m.lastRequest()
	assert.True(t, req.JSON)
	assert.Contains(t, req.Prompt, "Numerology Report into Hindi")
	assert.Contains(t, req.Prompt, `"title":"The Seeker"`)
}

func TestGateway_Translate_Failures(t *testing.T) {
	original, err := translation.Parse([]byte(`{"title":"The Seeker","items":["a","b"]}`))
	require.NoError(t, err)
	hindi, _ := translation.LookupLanguage("hi")

	tests := []struct {
		name  string
		reply string
		shape bool
	}{
		{"not json", "नमस्ते", false},
		{"dropped key", `{"title":"साधक"}`, true},
		{"added key", `{"title":"साधक","items":["a","b"],"extra":"x"}`, true},
		{"shorter list", `{"title":"साधक","items":["a"]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGateway(&fakeModel{replies: []string{tt.reply}})
			_, err := g.Translate(context.Background(), original, hindi, "Numerology Report")
			assert.ErrorIs(t, err, ErrService)
			if tt.shape {
				assert.ErrorIs(t, err, translation.ErrShapeMismatch)
			}
		})
	}
}

func TestGateway_Conversation(t *testing.T) {
	m := &fakeModel{convReplies: []*Response{{
		Text:    "Your life path is 8.",
		Sources: []types.Source{{Title: "Numerology 101", URI: "https://example.org/n"}},
	}}}
	g := newTestGateway(m)
	ctx := context.Background()

	conv, err := g.StartConversation(ctx, ChatInstruction("Summary: driven"))
	require.NoError(t, err)
	require.Len(t, m.started, 1)
	assert.Equal(t, "gemini-3-flash-preview", m.started[0].Model)
	assert.True(t, m.started[0].Search)
	assert.Contains(t, m.started[0].System, "--- User's Numerology Context ---\nSummary: driven")

	resp, err := g.SendConversationTurn(ctx, conv, "What does my life path mean?")
	require.NoError(t, err)
	assert.Equal(t, "Your life path is 8.", resp.Text)
	assert.Len(t, resp.Sources, 1)
	assert.Equal(t, []string{"What does my life path mean?"}, m.sent)

	_, err = g.SendConversationTurn(ctx, conv, "again")
	assert.ErrorIs(t, err, ErrService, "empty reply")

	m.convErr = errors.New("stream closed")
	_, err = g.SendConversationTurn(ctx, conv, "again")
	assert.ErrorIs(t, err, ErrService)
}

func TestGateway_RecordsUsage(t *testing.T) {
	m := &fakeModel{
		replies:     []string{coreJSON, "not json"},
		usage:       Usage{InputTokens: 120, OutputTokens: 800},
		convReplies: []*Response{{Text: "Hello.", Usage: Usage{InputTokens: 5, OutputTokens: 2}}},
	}
	g := newTestGateway(m)
	rec := &fakeRecorder{}
	g.SetUsageRecorder(rec)
	ctx := context.Background()

	_, err := g.GenerateCoreReport(ctx, asha)
	require.NoError(t, err)

	// A reply that fails to parse still consumed tokens.
	_, err = g.GenerateSpatialHarmonyReport(ctx, asha)
	require.Error(t, err)

	conv, err := g.StartConversation(ctx, "ctx")
	require.NoError(t, err)
	_, err = g.SendConversationTurn(ctx, conv, "hi")
	require.NoError(t, err)

	m.err = errors.New("unavailable")
	_, err = g.GenerateRemediesReport(ctx, asha)
	require.Error(t, err)

	assert.Equal(t, []string{
		"gemini-2.5-flash/core_report",
		"gemini-2.5-flash/spatial_harmony",
		"gemini-3-flash-preview/conversation_turn",
	}, rec.records)
	assert.Equal(t, 245, rec.input)
	assert.Equal(t, 1602, rec.output)
}

func TestError_Format(t *testing.T) {
	cause := errors.New("boom")
	err := serviceError("predictions", "Failed to generate yearly forecast.", cause)
	assert.Equal(t, "Failed to generate yearly forecast.", err.Error())
	assert.Equal(t, "predictions: Failed to generate yearly forecast.: boom", err.Detail())
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Equal(t, Kind(""), KindOf(cause))
	assert.Equal(t, "service error", ErrService.Error())
}
