package session

import (
	"context"
	"errors"
	"sync"

	"numerologyx/internal/gateway"
	"numerologyx/internal/translation"
	"numerologyx/internal/types"
)

// fakeGateway derives replies from its inputs so tests can tell whose data
// ended up in state: the core Life Path number is the length of the full
// name and the lucky number echoes the Life Path number.
type fakeGateway struct {
	mu    sync.Mutex
	calls map[string]int

	coreErr       error
	profileErr    error
	predictErr    error
	vastuErr      error
	pulseErr      error
	translateErr  error
	chatErr       error
	translateSeen []string

	// Gates block the named operation until closed.
	coreGate    chan struct{}
	profileGate chan struct{}
	vastuGate   chan struct{}
	pulseGate   chan struct{}
	chatGate    chan struct{}
	// translateGate blocks Translate without honoring ctx.
	translateGate chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{calls: make(map[string]int)}
}

func (f *fakeGateway) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeGateway) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeGateway) setErr(target *error, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	*target = err
}

func (f *fakeGateway) getErr(target *error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *target
}

func wait(ctx context.Context, gate chan struct{}) error {
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func coreFor(id types.Identity) *types.CoreReport {
	calc := &types.Calculations{
		LifePath:    types.CalculationDetail{Number: len(id.FullName)},
		Destiny:     types.CalculationDetail{Number: 3},
		SoulUrge:    types.CalculationDetail{Number: 5},
		Personality: types.CalculationDetail{Number: 7},
	}
	interp := &types.Interpretations{LifePath: types.Interpretation{Title: "Path of " + id.FullName}}
	return &types.CoreReport{
		Pythagorean: &types.SystemReport{Calculations: calc, Interpretations: interp},
		Chaldean:    &types.SystemReport{Calculations: calc, Interpretations: interp},
		Summary:     "Summary for " + id.FullName,
	}
}

func (f *fakeGateway) GenerateCoreReport(ctx context.Context, id types.Identity) (*types.CoreReport, error) {
	f.record("core")
	if err := wait(ctx, f.coreGate); err != nil {
		return nil, err
	}
	if err := f.getErr(&f.coreErr); err != nil {
		return nil, err
	}
	return coreFor(id), nil
}

func (f *fakeGateway) GenerateProfileTraits(ctx context.Context, calc *types.Calculations) (*types.ProfileTraits, error) {
	f.record("profile")
	if err := wait(ctx, f.profileGate); err != nil {
		return nil, err
	}
	if err := f.getErr(&f.profileErr); err != nil {
		return nil, err
	}
	return &types.ProfileTraits{
		LuckyColor:        types.LuckyColor{Name: "Indigo", Hex: "#4B0082"},
		LuckyNumber:       calc.LifePath.Number,
		CardinalDirection: "North",
	}, nil
}

func (f *fakeGateway) GeneratePredictions(ctx context.Context, id types.Identity, year int) (*types.PredictionsReport, error) {
	f.record("predictions")
	if err := f.getErr(&f.predictErr); err != nil {
		return nil, err
	}
	return &types.PredictionsReport{
		PersonalYear:    types.PersonalYear{Number: year % 9, Theme: "Theme"},
		MonthlyForecast: []types.PredictionMonth{{Month: "January", Number: 1, Forecast: "Begin."}},
	}, nil
}

func (f *fakeGateway) GenerateSpatialHarmonyReport(ctx context.Context, id types.Identity) (*types.SpatialHarmonyReport, error) {
	f.record("vastu")
	if err := wait(ctx, f.vastuGate); err != nil {
		return nil, err
	}
	if err := f.getErr(&f.vastuErr); err != nil {
		return nil, err
	}
	return &types.SpatialHarmonyReport{
		FavorableDirections: []string{"North-East"},
		HomeHarmony:         []types.RoomTip{{Room: "Kitchen", Tip: "Face east while cooking."}},
		Avoid:               []string{"Clutter"},
	}, nil
}

func (f *fakeGateway) GenerateRemediesReport(ctx context.Context, id types.Identity) (*types.RemediesReport, error) {
	f.record("remedies")
	return &types.RemediesReport{
		Gemstones: []types.Gemstone{{Name: "Emerald", WearingInstructions: "Wednesday"}},
		Rudraksha: types.Rudraksha{Mukhi: "5", Benefit: "Calm"},
	}, nil
}

func (f *fakeGateway) GetDailyPulse(ctx context.Context, dateKey string) (*types.DailyPulse, error) {
	f.record("pulse")
	if err := wait(ctx, f.pulseGate); err != nil {
		return nil, err
	}
	if err := f.getErr(&f.pulseErr); err != nil {
		return nil, err
	}
	return &types.DailyPulse{
		NumberOfDay:     types.DayNumber{Number: 4, Keywords: "pulse for " + dateKey},
		CosmicInfluence: types.CosmicInfluence{Title: "Steady", Description: "Build."},
	}, nil
}

func (f *fakeGateway) Translate(ctx context.Context, payload *translation.Node, lang translation.Language, label string) (*translation.Node, error) {
	f.record("translate")
	if f.translateGate != nil {
		<-f.translateGate
	}
	data, _ := payload.MarshalJSON()
	f.mu.Lock()
	f.translateSeen = append(f.translateSeen, string(data))
	err := f.translateErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return translation.MapText(payload, func(_ translation.Path, s string) string {
		return lang.Code + ":" + s
	}), nil
}

type fakeConversation struct{}

func (fakeConversation) Send(ctx context.Context, text string) (*gateway.Response, error) {
	return nil, errors.New("unused")
}

func (f *fakeGateway) StartConversation(ctx context.Context, instruction string) (gateway.Conversation, error) {
	f.record("start_conversation")
	return fakeConversation{}, nil
}

func (f *fakeGateway) SendConversationTurn(ctx context.Context, conv gateway.Conversation, userText string) (*gateway.Response, error) {
	f.record("turn")
	if err := wait(ctx, f.chatGate); err != nil {
		return nil, err
	}
	if err := f.getErr(&f.chatErr); err != nil {
		return nil, err
	}
	return &gateway.Response{Text: "About " + userText}, nil
}
