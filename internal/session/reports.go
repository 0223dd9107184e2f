package session

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"numerologyx/internal/logging"
	"numerologyx/internal/types"
)

// RequestPredictions generates the forecast for year. Only the most
// recently requested year is kept; a failure leaves the previous forecast
// loaded.
func (o *Orchestrator) RequestPredictions(ctx context.Context, year int) (*types.PredictionsReport, error) {
	o.mu.Lock()
	id, gen, err := o.currentIdentityLocked()
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	o.predictionsSeq++
	seq := o.predictionsSeq
	o.predictions.Loading = true
	o.predictions.Error = ""
	o.mu.Unlock()

	report, err := o.gw.GeneratePredictions(ctx, id, year)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.generation != gen || o.predictionsSeq != seq {
		return nil, ErrSuperseded
	}
	o.predictions.Loading = false
	if err != nil {
		o.predictions.Error = err.Error()
		return nil, err
	}
	o.predictions.Value = report
	o.predictionsYear = year
	return report, nil
}

// RequestSpatialHarmonyReport returns the cached spatial-harmony report or
// generates it. Concurrent callers share one gateway call.
func (o *Orchestrator) RequestSpatialHarmonyReport(ctx context.Context) (*types.SpatialHarmonyReport, error) {
	return lazyLoad(ctx, o, types.KindVastu,
		func() *Slot[types.SpatialHarmonyReport] { return &o.vastu },
		o.gw.GenerateSpatialHarmonyReport)
}

// RequestRemediesReport returns the cached remedies report or generates it.
func (o *Orchestrator) RequestRemediesReport(ctx context.Context) (*types.RemediesReport, error) {
	return lazyLoad(ctx, o, types.KindRemedies,
		func() *Slot[types.RemediesReport] { return &o.remedies },
		o.gw.GenerateRemediesReport)
}

// lazyLoad implements generate-once-per-identity for a memory-only report.
// slot is only dereferenced while o.mu is held.
func lazyLoad[T any](
	ctx context.Context,
	o *Orchestrator,
	kind types.ReportKind,
	slot func() *Slot[T],
	fetch func(context.Context, types.Identity) (*T, error),
) (*T, error) {
	o.mu.Lock()
	id, gen, err := o.currentIdentityLocked()
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	if s := slot(); s.Value != nil {
		v := s.Value
		o.mu.Unlock()
		return v, nil
	}
	s := slot()
	s.Loading = true
	s.Error = ""
	o.mu.Unlock()

	v, shared, err := o.join(ctx, string(kind)+":"+gen, func(ctx context.Context) (interface{}, error) {
		logging.SessionDebug("Loading %s report", kind)
		result, err := fetch(ctx, id)

		o.mu.Lock()
		defer o.mu.Unlock()
		if o.generation != gen {
			return nil, ErrSuperseded
		}
		s := slot()
		s.Loading = false
		if err != nil {
			s.Error = err.Error()
			return nil, err
		}
		s.Value = result
		return result, nil
	})
	if shared {
		logging.SessionDebug("Joined in-flight %s load", kind)
	}
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

// DailyPulse returns today's pulse. A persisted pulse for today's local
// date is used as is; otherwise one gateway call is made and the persisted
// pair is overwritten.
func (o *Orchestrator) DailyPulse(ctx context.Context) (*types.DailyPulse, error) {
	today := types.DateKey(o.now())

	stored, ok, err := o.store.LoadDailyPulse(ctx)
	if err != nil {
		logging.SessionWarn("Ignoring unreadable daily pulse: %v", err)
		ok = false
	}
	if ok && stored.Date == today {
		pulse := stored.Data
		o.mu.Lock()
		o.pulse = Slot[types.DailyPulse]{Value: &pulse}
		o.mu.Unlock()
		return &pulse, nil
	}

	o.mu.Lock()
	epoch := o.pulseEpoch
	o.pulse.Loading = true
	o.pulse.Error = ""
	o.mu.Unlock()

	key := fmt.Sprintf("%s:%d:%s", types.KindDailyPulse, epoch, today)
	v, _, err := o.join(ctx, key, func(ctx context.Context) (interface{}, error) {
		pulse, err := o.gw.GetDailyPulse(ctx, today)

		o.mu.Lock()
		defer o.mu.Unlock()
		if o.pulseEpoch != epoch {
			return nil, ErrSuperseded
		}
		o.pulse.Loading = false
		if err != nil {
			o.pulse.Error = err.Error()
			return nil, err
		}
		o.pulse.Value = pulse
		if err := o.store.SaveDailyPulse(ctx, today, *pulse); err != nil {
			logging.SessionError("Failed to persist daily pulse: %v", err)
		}
		return pulse, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.DailyPulse), nil
}

// join runs fn once per key. fn gets a context that keeps the first
// caller's values but not its cancellation, so callers that joined later
// are not failed by it; Close still cancels it. A caller whose own ctx ends
// returns early while the shared load carries on into state.
func (o *Orchestrator) join(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, bool, error) {
	ch := o.loads.DoChan(key, func() (interface{}, error) {
		detached, cancel := context.WithCancel(context.WithoutCancel(ctx))
		defer cancel()
		stop := context.AfterFunc(o.bgCtx, cancel)
		defer stop()
		return fn(detached)
	})
	select {
	case r := <-ch:
		return r.Val, r.Shared, r.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Preload fetches the current-year forecast, the spatial-harmony report and
// the remedies report concurrently.
func (o *Orchestrator) Preload(ctx context.Context) error {
	year := o.now().Year()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := o.RequestPredictions(ctx, year)
		return err
	})
	g.Go(func() error {
		_, err := o.RequestSpatialHarmonyReport(ctx)
		return err
	})
	g.Go(func() error {
		_, err := o.RequestRemediesReport(ctx)
		return err
	})
	return g.Wait()
}
