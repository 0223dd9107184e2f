// Package gateway is the façade over the generative-language service.
//
// Every operation issues exactly one call, parses the structured reply and
// returns either a typed result or an *Error. The gateway never retries and
// never touches persisted state; caching is the caller's concern.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"numerologyx/internal/config"
	"numerologyx/internal/logging"
	"numerologyx/internal/translation"
	"numerologyx/internal/types"
)

// Gateway issues report, translation and conversation calls.
type Gateway struct {
	model        Model
	reportModel  string
	chatModel    string
	enableSearch bool
	timeout      time.Duration
	usage        UsageRecorder
}

// New builds a Gateway on the Gemini API. A missing credential is not an
// error here: the Gateway is returned unconfigured and every call fails
// with a configuration error.
func New(ctx context.Context, cfg *config.Config) (*Gateway, error) {
	g := newGateway(nil, cfg)
	if !cfg.HasAPIKey() {
		logging.GatewayWarn("No API key configured; generation calls will fail until one is set")
		return g, nil
	}
	m, err := NewGenAIModel(ctx, cfg.Gateway.APIKey)
	if err != nil {
		return nil, configurationError("new", err)
	}
	g.model = m
	logging.Gateway("Gateway ready (model=%s chat_model=%s search=%v)", g.reportModel, g.chatModel, g.enableSearch)
	return g, nil
}

// NewWithModel builds a Gateway on an explicit backend.
func NewWithModel(m Model, cfg *config.Config) *Gateway {
	return newGateway(m, cfg)
}

func newGateway(m Model, cfg *config.Config) *Gateway {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Gateway{
		model:        m,
		reportModel:  cfg.Gateway.Model,
		chatModel:    cfg.Gateway.ChatModel,
		enableSearch: cfg.Gateway.EnableSearch,
		timeout:      cfg.GetGatewayTimeout(),
	}
}

// SetUsageRecorder installs r to receive per-call token usage.
func (g *Gateway) SetUsageRecorder(r UsageRecorder) {
	g.usage = r
}

// Configured reports whether a backend is available.
func (g *Gateway) Configured() bool {
	return g.model != nil
}

// =============================================================================
// REPORTS
// =============================================================================

// GenerateCoreReport computes both naming systems for id.
func (g *Gateway) GenerateCoreReport(ctx context.Context, id types.Identity) (*types.CoreReport, error) {
	const op = "core_report"
	const failure = "Failed to generate numerology report. The AI service may be experiencing issues."

	if err := id.Validate(); err != nil {
		return nil, validationError(op, err.Error(), err)
	}
	id = id.Normalized()

	report, err := generate[types.CoreReport](ctx, g, op, failure, Request{
		Model:  g.reportModel,
		System: corePreamble,
		Prompt: corePrompt(id),
		Schema: CoreReportSchema(),
	})
	if err != nil {
		return nil, err
	}
	if err := report.Validate(); err != nil {
		logging.GatewayWarn("%s: %v", op, err)
		return nil, validationError(op, "Invalid report structure received from AI. Missing Pythagorean or Chaldean data.", err)
	}
	return report, nil
}

// GenerateProfileTraits derives lucky color, number and direction from the
// primary-system calculations.
func (g *Gateway) GenerateProfileTraits(ctx context.Context, calc *types.Calculations) (*types.ProfileTraits, error) {
	const op = "profile_traits"
	const failure = "Failed to generate personalized profile traits."

	if calc == nil {
		return nil, validationError(op, failure, errors.New("no calculations"))
	}
	return generate[types.ProfileTraits](ctx, g, op, failure, Request{
		Model:  g.reportModel,
		System: profilePreamble,
		Prompt: profilePrompt(calc),
		Schema: ProfileTraitsSchema(),
	})
}

// GeneratePredictions forecasts year for id. The year is passed through
// unchecked.
func (g *Gateway) GeneratePredictions(ctx context.Context, id types.Identity, year int) (*types.PredictionsReport, error) {
	const op = "predictions"
	const failure = "Failed to generate yearly forecast."

	report, err := generate[types.PredictionsReport](ctx, g, op, failure, Request{
		Model:  g.reportModel,
		System: predictionsPreamble,
		Prompt: predictionsPrompt(id, year),
		Schema: PredictionsSchema(),
	})
	if err != nil {
		return nil, err
	}
	if len(report.MonthlyForecast) == 0 {
		return nil, validationError(op, failure, errors.New("empty monthly forecast"))
	}
	return report, nil
}

// GenerateSpatialHarmonyReport produces the Vastu advice for id.
func (g *Gateway) GenerateSpatialHarmonyReport(ctx context.Context, id types.Identity) (*types.SpatialHarmonyReport, error) {
	return generate[types.SpatialHarmonyReport](ctx, g, "spatial_harmony", "Failed to generate Vastu report.", Request{
		Model:  g.reportModel,
		System: spatialHarmonyPreamble,
		Prompt: identityPrompt(id),
		Schema: SpatialHarmonySchema(),
	})
}

// GenerateRemediesReport produces the detailed remedies for id.
func (g *Gateway) GenerateRemediesReport(ctx context.Context, id types.Identity) (*types.RemediesReport, error) {
	return generate[types.RemediesReport](ctx, g, "remedies", "Failed to generate Remedies report.", Request{
		Model:  g.reportModel,
		System: remediesPreamble,
		Prompt: identityPrompt(id),
		Schema: RemediesSchema(),
	})
}

// GetDailyPulse generates the pulse for a YYYY-MM-DD date key.
func (g *Gateway) GetDailyPulse(ctx context.Context, dateKey string) (*types.DailyPulse, error) {
	return generate[types.DailyPulse](ctx, g, "daily_pulse", "Failed to fetch the Daily Cosmic Pulse.", Request{
		Model:  g.reportModel,
		System: dailyPulsePreamble,
		Prompt: dailyPulsePrompt(dateKey),
		Schema: DailyPulseSchema(),
	})
}

// =============================================================================
// TRANSLATION
// =============================================================================

// Translate returns payload with its text leaves rendered in lang. The
// reply must mirror the payload's shape; invariant leaves (numbers, dates,
// codes) always keep their original value.
func (g *Gateway) Translate(ctx context.Context, payload *translation.Node, lang translation.Language, contextLabel string) (*translation.Node, error) {
	const op = "translate"
	const failure = "Failed to translate content."

	if payload == nil {
		return nil, serviceError(op, failure, errors.New("nil payload"))
	}
	data, err := payload.MarshalJSON()
	if err != nil {
		return nil, serviceError(op, failure, err)
	}

	resp, err := g.call(ctx, op, failure, Request{
		Model:  g.reportModel,
		Prompt: translatePrompt(data, lang.Name, contextLabel),
		JSON:   true,
	})
	if err != nil {
		return nil, err
	}

	candidate, err := translation.Parse([]byte(strings.TrimSpace(resp.Text)))
	if err != nil {
		return nil, serviceError(op, failure, err)
	}
	if err := translation.CheckShape(payload, candidate); err != nil {
		logging.TranslationWarn("Rejected %s translation to %s: %v", contextLabel, lang.Code, err)
		return nil, serviceError(op, failure, err)
	}
	logging.TranslationDebug("Translated %s to %s", contextLabel, lang.Code)
	return translation.Merge(payload, candidate), nil
}

// =============================================================================
// CONVERSATION
// =============================================================================

// StartConversation opens a dialogue grounded on instruction.
func (g *Gateway) StartConversation(ctx context.Context, instruction string) (Conversation, error) {
	const op = "start_conversation"
	if g.model == nil {
		return nil, configurationError(op, nil)
	}
	conv, err := g.model.StartConversation(ctx, ConversationRequest{
		Model:  g.chatModel,
		System: instruction,
		Search: g.enableSearch,
	})
	if err != nil {
		return nil, serviceError(op, "Failed to get a response from the AI assistant.", err)
	}
	return conv, nil
}

// SendConversationTurn sends userText on conv and returns the reply with
// any citations the service attached.
func (g *Gateway) SendConversationTurn(ctx context.Context, conv Conversation, userText string) (*Response, error) {
	const op = "conversation_turn"
	const failure = "Failed to get a response from the AI assistant."

	if conv == nil {
		return nil, serviceError(op, failure, errors.New("no conversation"))
	}
	timer := logging.StartTimer(logging.CategoryGateway, op)
	defer timer.Stop()

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	resp, err := conv.Send(ctx, userText)
	if err != nil {
		return nil, serviceError(op, failure, err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return nil, serviceError(op, failure, errors.New("empty reply"))
	}
	g.record(g.chatModel, op, resp.Usage)
	return resp, nil
}

// =============================================================================
// INTERNALS
// =============================================================================

func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.timeout)
}

// call performs one generation and requires a non-empty reply.
func (g *Gateway) call(ctx context.Context, op, failure string, req Request) (*Response, error) {
	if g.model == nil {
		return nil, configurationError(op, nil)
	}
	timer := logging.StartTimer(logging.CategoryGateway, op)
	defer timer.Stop()

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	logging.GatewayDebug("%s: calling %s (%d prompt bytes)", op, req.Model, len(req.Prompt))
	resp, err := g.model.Generate(ctx, req)
	if err != nil {
		gerr := serviceError(op, failure, err)
		logging.GatewayError("%s", gerr.Detail())
		return nil, gerr
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return nil, serviceError(op, failure, errors.New("no data returned from the AI service"))
	}
	g.record(req.Model, op, resp.Usage)
	return resp, nil
}

func (g *Gateway) record(model, op string, u Usage) {
	if g.usage != nil {
		g.usage.Track(model, op, u.InputTokens, u.OutputTokens)
	}
}

// generate performs one call and decodes the JSON reply into T.
func generate[T any](ctx context.Context, g *Gateway, op, failure string, req Request) (*T, error) {
	resp, err := g.call(ctx, op, failure, req)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Text)), &out); err != nil {
		logging.GatewayWarn("%s: unparseable reply: %v", op, err)
		return nil, serviceError(op, failure, fmt.Errorf("decode reply: %w", err))
	}
	return &out, nil
}
