package server

import (
	"context"
	"fmt"
	"sync"

	"numerologyx/internal/session"
	"numerologyx/internal/translation"
	"numerologyx/internal/types"
)

// fakeOrchestrator records calls and returns canned results.
type fakeOrchestrator struct {
	mu sync.Mutex

	state session.State
	err   error

	calculated []types.Identity
	years      []int
	messages   []string
	views      []types.View
	resets     int

	displayed    session.Displayed
	translateErr error
}

func (f *fakeOrchestrator) State() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeOrchestrator) Calculate(ctx context.Context, id types.Identity) (*types.CoreReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calculated = append(f.calculated, id)
	if f.err != nil {
		return nil, f.err
	}
	report := &types.CoreReport{Summary: "Summary for " + id.FullName}
	f.state.Identity = &id
	f.state.Core.Value = report
	f.state.View = types.ViewReport
	return report, nil
}

func (f *fakeOrchestrator) RequestPredictions(ctx context.Context, year int) (*types.PredictionsReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.years = append(f.years, year)
	if f.err != nil {
		return nil, f.err
	}
	return &types.PredictionsReport{PersonalYear: types.PersonalYear{Number: 7, Theme: "Reflection"}}, nil
}

func (f *fakeOrchestrator) RequestSpatialHarmonyReport(ctx context.Context) (*types.SpatialHarmonyReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.SpatialHarmonyReport{FavorableDirections: []string{"North"}}, nil
}

func (f *fakeOrchestrator) RequestRemediesReport(ctx context.Context) (*types.RemediesReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.RemediesReport{Gemstones: []types.Gemstone{{Name: "Pearl"}}}, nil
}

func (f *fakeOrchestrator) DailyPulse(ctx context.Context) (*types.DailyPulse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.DailyPulse{}, nil
}

func (f *fakeOrchestrator) SendMessage(ctx context.Context, text string) (types.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	if f.err != nil {
		return types.ChatMessage{}, f.err
	}
	reply := types.ChatMessage{Role: types.RoleAssistant, Text: "About " + text}
	f.state.Messages = append(f.state.Messages,
		types.ChatMessage{Role: types.RoleUser, Text: text}, reply)
	return reply, nil
}

func (f *fakeOrchestrator) TranslateReport(ctx context.Context, kind types.ReportKind, code string) (session.Displayed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.translateErr != nil {
		return f.displayed, f.translateErr
	}
	lang, err := translation.LookupLanguage(code)
	if err != nil {
		return f.displayed, err
	}
	f.displayed.Kind = kind
	f.displayed.Language = lang
	return f.displayed, nil
}

func (f *fakeOrchestrator) DisplayedReport(kind types.ReportKind) (session.Displayed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return session.Displayed{}, f.err
	}
	if kind == types.KindDailyPulse || kind == types.KindProfile {
		return session.Displayed{}, fmt.Errorf("report kind %q is not translatable", kind)
	}
	d := f.displayed
	d.Kind = kind
	return d, nil
}

func (f *fakeOrchestrator) Navigate(view types.View) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.views = append(f.views, view)
	f.state.View = view
	return nil
}

func (f *fakeOrchestrator) Reset(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	f.state = session.State{View: types.ViewDashboard}
	return nil
}
