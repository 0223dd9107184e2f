package session

import (
	"context"
	"fmt"

	"numerologyx/internal/translation"
	"numerologyx/internal/types"
)

// Translate renders payload in lang. The source language is an identity
// passthrough and makes no gateway call.
func (o *Orchestrator) Translate(ctx context.Context, payload *translation.Node, lang translation.Language, contextLabel string) (*translation.Node, error) {
	if lang.IsSource() {
		return payload, nil
	}
	return o.gw.Translate(ctx, payload, lang, contextLabel)
}

// display binds a translation view to the report value it was built from.
type display[T any] struct {
	src  *T
	view *translation.View[T]
}

// viewFor returns the view for src. When the report changed the view is
// reset to it, which also drops a translation of the old report in flight.
func (d *display[T]) viewFor(src *T, label string, tr translation.Translator) (*translation.View[T], error) {
	if src == nil {
		return nil, ErrNotLoaded
	}
	if d.view == nil {
		v, err := translation.NewView(*src, label, tr)
		if err != nil {
			return nil, err
		}
		d.src, d.view = src, v
		return v, nil
	}
	if d.src != src {
		if err := d.view.Reset(*src); err != nil {
			return nil, err
		}
		d.src = src
	}
	return d.view, nil
}

// displays holds one translation view per translatable report.
type displays struct {
	core        display[types.CoreReport]
	predictions display[types.PredictionsReport]
	vastu       display[types.SpatialHarmonyReport]
	remedies    display[types.RemediesReport]
}

// Displayed is the variant of a report currently shown.
type Displayed struct {
	Kind        types.ReportKind     `json:"kind"`
	Language    translation.Language `json:"language"`
	Translating bool                 `json:"translating"`
	Report      interface{}          `json:"report"`
}

// TranslateReport selects the display language of the report of kind.
// Translations always start from the original report. On failure the
// previous language stays displayed and the error is returned with it.
func (o *Orchestrator) TranslateReport(ctx context.Context, kind types.ReportKind, code string) (Displayed, error) {
	o.mu.Lock()
	sel, err := o.selectorLocked(kind)
	o.mu.Unlock()
	if err != nil {
		return Displayed{}, err
	}
	err = sel.choose(ctx, code)
	return sel.snapshot(kind), err
}

// DisplayedReport returns the currently displayed variant of kind.
func (o *Orchestrator) DisplayedReport(kind types.ReportKind) (Displayed, error) {
	o.mu.Lock()
	sel, err := o.selectorLocked(kind)
	o.mu.Unlock()
	if err != nil {
		return Displayed{}, err
	}
	return sel.snapshot(kind), nil
}

// selector erases the report type of a translation view.
type selector struct {
	choose   func(ctx context.Context, code string) error
	snapshot func(kind types.ReportKind) Displayed
}

func selectorOf[T any](v *translation.View[T]) selector {
	return selector{
		choose: v.Select,
		snapshot: func(kind types.ReportKind) Displayed {
			return Displayed{
				Kind:        kind,
				Language:    v.Language(),
				Translating: v.IsTranslating(),
				Report:      v.Displayed(),
			}
		},
	}
}

func (o *Orchestrator) selectorLocked(kind types.ReportKind) (selector, error) {
	label := kind.ContextLabel()
	switch kind {
	case types.KindCore:
		v, err := o.displays.core.viewFor(o.core.Value, label, o)
		if err != nil {
			return selector{}, err
		}
		return selectorOf(v), nil
	case types.KindPredictions:
		v, err := o.displays.predictions.viewFor(o.predictions.Value, label, o)
		if err != nil {
			return selector{}, err
		}
		return selectorOf(v), nil
	case types.KindVastu:
		v, err := o.displays.vastu.viewFor(o.vastu.Value, label, o)
		if err != nil {
			return selector{}, err
		}
		return selectorOf(v), nil
	case types.KindRemedies:
		v, err := o.displays.remedies.viewFor(o.remedies.Value, label, o)
		if err != nil {
			return selector{}, err
		}
		return selectorOf(v), nil
	}
	return selector{}, fmt.Errorf("report kind %q is not translatable", kind)
}
