// Package session implements the orchestrator behind every front-end.
//
// The Orchestrator is the single source of truth for the visible view, the
// loaded reports and the operations in flight:
//
//	calculate → Gateway.GenerateCoreReport → persist → view=report
//	                                        └→ background profile traits
//	open forecast / vastu / remedies → lazy, single-flight, memory only
//	daily pulse → persisted (date, data) pair, regenerated when the date changes
//	reset → clear persisted keys and memory, view=dashboard
//
// Each calculate (and each reset) starts a new generation. Results that
// arrive for an older generation are dropped, so a late background fetch
// can never leak one person's data into another's session. The daily pulse
// belongs to no identity, so only reset discards a pulse in flight.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"numerologyx/internal/chat"
	"numerologyx/internal/logging"
	"numerologyx/internal/store"
	"numerologyx/internal/translation"
	"numerologyx/internal/types"
)

var (
	// ErrNoIdentity is returned by operations that need a calculated identity.
	ErrNoIdentity = errors.New("no identity: calculate a report first")
	// ErrTurnInFlight is returned when a message is sent while a turn is pending.
	ErrTurnInFlight = errors.New("a conversation turn is already in flight")
	// ErrSuperseded is returned when a newer calculate or a reset replaced
	// the state a request was started for.
	ErrSuperseded = errors.New("superseded by a newer request")
	// ErrNotLoaded is returned when translating a report that is not loaded.
	ErrNotLoaded = errors.New("report not loaded")
	// ErrEmptyMessage is returned for a blank chat message.
	ErrEmptyMessage = errors.New("message is empty")
)

// Gateway is the subset of gateway.Gateway the orchestrator drives.
type Gateway interface {
	GenerateCoreReport(ctx context.Context, id types.Identity) (*types.CoreReport, error)
	GenerateProfileTraits(ctx context.Context, calc *types.Calculations) (*types.ProfileTraits, error)
	GeneratePredictions(ctx context.Context, id types.Identity, year int) (*types.PredictionsReport, error)
	GenerateSpatialHarmonyReport(ctx context.Context, id types.Identity) (*types.SpatialHarmonyReport, error)
	GenerateRemediesReport(ctx context.Context, id types.Identity) (*types.RemediesReport, error)
	GetDailyPulse(ctx context.Context, dateKey string) (*types.DailyPulse, error)
	translation.Translator
	chat.Gateway
}

// Slot is one report's loaded value and request status.
type Slot[T any] struct {
	Value   *T     `json:"value,omitempty"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// State is a point-in-time snapshot of the orchestrator.
type State struct {
	View            types.View                       `json:"view"`
	Identity        *types.Identity                  `json:"identity,omitempty"`
	Core            Slot[types.CoreReport]           `json:"core"`
	Profile         Slot[types.ProfileTraits]        `json:"profile"`
	Predictions     Slot[types.PredictionsReport]    `json:"predictions"`
	PredictionsYear int                              `json:"predictionsYear,omitempty"`
	Vastu           Slot[types.SpatialHarmonyReport] `json:"vastu"`
	Remedies        Slot[types.RemediesReport]       `json:"remedies"`
	DailyPulse      Slot[types.DailyPulse]           `json:"dailyPulse"`
	Messages        []types.ChatMessage              `json:"messages"`
	ChatLoading     bool                             `json:"chatLoading"`
	ChatState       string                           `json:"chatState"`
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock sets the clock used for daily-pulse date keys and default
// forecast years.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// Orchestrator coordinates the gateway, the conversation session and the
// persistence adapter.
type Orchestrator struct {
	mu sync.Mutex

	gw    Gateway
	store *store.Store
	chat  *chat.Session
	now   func() time.Time

	loads singleflight.Group
	bg    sync.WaitGroup
	// bgCtx parents background fetches; Close cancels it.
	bgCtx    context.Context
	bgCancel context.CancelFunc

	generation string
	view       types.View
	identity   *types.Identity

	core            Slot[types.CoreReport]
	profile         Slot[types.ProfileTraits]
	predictions     Slot[types.PredictionsReport]
	predictionsYear int
	predictionsSeq  uint64
	vastu           Slot[types.SpatialHarmonyReport]
	remedies        Slot[types.RemediesReport]
	pulse           Slot[types.DailyPulse]
	pulseEpoch      uint64

	chatLoading bool
	chatTurn    uint64

	displays displays
}

// New creates an Orchestrator on the dashboard view with no identity.
func New(gw Gateway, st *store.Store, opts ...Option) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		gw:         gw,
		store:      st,
		chat:       chat.New(gw),
		now:        time.Now,
		bgCtx:      ctx,
		bgCancel:   cancel,
		generation: uuid.NewString(),
		view:       types.ViewDashboard,
	}
	for _, opt := range opts {
		opt(o)
	}
	logging.Session("Orchestrator created (generation=%s)", o.generation)
	return o
}

// Restore loads the persisted identity, core report and profile traits.
// Identity and report are restored together or not at all.
func (o *Orchestrator) Restore(ctx context.Context) error {
	id, report, ok, err := o.store.LoadCoreReport(ctx)
	if err != nil {
		return err
	}
	traits, traitsOK, err := o.store.LoadProfileTraits(ctx)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if !ok {
		logging.SessionDebug("Nothing to restore")
		return nil
	}
	o.identity = &id
	o.core = Slot[types.CoreReport]{Value: report}
	if traitsOK {
		o.profile = Slot[types.ProfileTraits]{Value: traits}
	}
	logging.Session("Restored report for %s", id.FullName)
	return nil
}

// State returns a snapshot of the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := State{
		View:            o.view,
		Core:            o.core,
		Profile:         o.profile,
		Predictions:     o.predictions,
		PredictionsYear: o.predictionsYear,
		Vastu:           o.vastu,
		Remedies:        o.remedies,
		DailyPulse:      o.pulse,
		Messages:        o.chat.History(),
		ChatLoading:     o.chatLoading,
		ChatState:       o.chat.State().String(),
	}
	if o.identity != nil {
		id := *o.identity
		st.Identity = &id
	}
	return st
}

// Navigate switches the active view. Every view but the dashboard needs an
// identity. Opening the spatial-harmony or remedies view without a cached
// report starts its lazy load in the background.
func (o *Orchestrator) Navigate(view types.View) error {
	if _, err := types.ParseView(string(view)); err != nil {
		return err
	}

	o.mu.Lock()
	if view != types.ViewDashboard && o.identity == nil {
		o.mu.Unlock()
		return ErrNoIdentity
	}
	o.view = view
	startVastu := view == types.ViewVastu && o.vastu.Value == nil && !o.vastu.Loading
	startRemedies := view == types.ViewRemedies && o.remedies.Value == nil && !o.remedies.Loading
	o.mu.Unlock()

	logging.SessionDebug("View -> %s", view)
	switch {
	case startVastu:
		o.background("spatial_harmony", func(ctx context.Context) error {
			_, err := o.RequestSpatialHarmonyReport(ctx)
			return err
		})
	case startRemedies:
		o.background("remedies", func(ctx context.Context) error {
			_, err := o.RequestRemediesReport(ctx)
			return err
		})
	}
	return nil
}

// Reset clears the persisted session keys and all in-memory state and returns to
// the dashboard.
func (o *Orchestrator) Reset(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.generation = uuid.NewString()
	o.identity = nil
	o.core = Slot[types.CoreReport]{}
	o.clearDependentsLocked()
	o.pulse = Slot[types.DailyPulse]{}
	o.pulseEpoch++
	o.view = types.ViewDashboard

	if err := o.store.Clear(ctx); err != nil {
		logging.SessionError("Reset failed to clear persisted state: %v", err)
		return err
	}
	logging.Session("Session reset (generation=%s)", o.generation)
	return nil
}

// clearDependentsLocked drops everything derived from the current core
// report. Caller holds o.mu.
func (o *Orchestrator) clearDependentsLocked() {
	o.profile = Slot[types.ProfileTraits]{}
	o.predictions = Slot[types.PredictionsReport]{}
	o.predictionsYear = 0
	o.predictionsSeq++
	o.vastu = Slot[types.SpatialHarmonyReport]{}
	o.remedies = Slot[types.RemediesReport]{}
	o.chat.Reset()
	o.chatLoading = false
	o.chatTurn++
	o.displays = displays{}
}

// background runs fn on the orchestrator's background context. Failures are
// logged and swallowed.
func (o *Orchestrator) background(name string, fn func(ctx context.Context) error) {
	o.bg.Add(1)
	go func() {
		defer o.bg.Done()
		if err := fn(o.bgCtx); err != nil && !errors.Is(err, ErrSuperseded) {
			logging.SessionWarn("Background %s failed: %v", name, err)
		}
	}()
}

// WaitBackground blocks until every background fetch has finished.
func (o *Orchestrator) WaitBackground() {
	o.bg.Wait()
}

// Close cancels background fetches and waits for them to return.
func (o *Orchestrator) Close() {
	o.bgCancel()
	o.bg.Wait()
}

func (o *Orchestrator) currentIdentityLocked() (types.Identity, string, error) {
	if o.identity == nil {
		return types.Identity{}, "", ErrNoIdentity
	}
	return *o.identity, o.generation, nil
}
