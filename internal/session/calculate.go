package session

import (
	"context"

	"github.com/google/uuid"

	"numerologyx/internal/logging"
	"numerologyx/internal/types"
)

// Calculate generates the core report for id. Dependent state is cleared
// up front. On success the report and identity are persisted, the view
// switches to the report, and the profile traits are fetched in the
// background. On failure the previous report stays loaded and the view is
// unchanged.
func (o *Orchestrator) Calculate(ctx context.Context, id types.Identity) (*types.CoreReport, error) {
	id = id.Normalized()
	if err := id.Validate(); err != nil {
		return nil, err
	}

	timer := logging.StartTimer(logging.CategorySession, "Calculate")
	defer timer.Stop()

	o.mu.Lock()
	gen := uuid.NewString()
	o.generation = gen
	o.core.Loading = true
	o.core.Error = ""
	o.clearDependentsLocked()
	o.mu.Unlock()

	logging.Session("Calculating report for %s (generation=%s)", id.FullName, gen)
	report, err := o.gw.GenerateCoreReport(ctx, id)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.generation != gen {
		logging.SessionDebug("Dropping core report for superseded generation %s", gen)
		return nil, ErrSuperseded
	}
	o.core.Loading = false
	if err != nil {
		o.core.Error = err.Error()
		logging.SessionWarn("Core report failed: %v", err)
		return nil, err
	}

	if err := o.store.SaveCoreReport(ctx, id, report); err != nil {
		logging.SessionError("Failed to persist core report: %v", err)
	}
	o.identity = &id
	o.core.Value = report
	o.view = types.ViewReport
	o.profile.Loading = true

	calc := report.PrimaryCalculations()
	o.background("profile_traits", func(ctx context.Context) error {
		return o.fetchProfileTraits(ctx, gen, calc)
	})
	return report, nil
}

// fetchProfileTraits stores the traits if gen is still current.
func (o *Orchestrator) fetchProfileTraits(ctx context.Context, gen string, calc *types.Calculations) error {
	traits, err := o.gw.GenerateProfileTraits(ctx, calc)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.generation != gen {
		logging.SessionDebug("Discarding profile traits for superseded generation %s", gen)
		return ErrSuperseded
	}
	o.profile.Loading = false
	if err != nil {
		return err
	}
	o.profile.Value = traits
	if err := o.store.SaveProfileTraits(ctx, traits); err != nil {
		logging.SessionError("Failed to persist profile traits: %v", err)
	}
	return nil
}
