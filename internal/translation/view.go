package translation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"numerologyx/internal/logging"
)

// ErrTranslationInFlight is returned when a language is selected while a
// previous selection on the same view is still translating.
var ErrTranslationInFlight = errors.New("translation already in progress")

// Translator turns a pristine payload into its translated counterpart.
type Translator interface {
	Translate(ctx context.Context, payload *Node, lang Language, contextLabel string) (*Node, error)
}

// View holds the displayed variant of one report: either the original or a
// translated copy. Translations are always derived from the original.
type View[T any] struct {
	mu          sync.Mutex
	translator  Translator
	label       string
	original    T
	tree        *Node
	displayed   T
	language    Language
	translating bool
	generation  uint64
}

// NewView creates a view showing original in the source language.
func NewView[T any](original T, contextLabel string, translator Translator) (*View[T], error) {
	tree, err := FromValue(original)
	if err != nil {
		return nil, err
	}
	return &View[T]{
		translator: translator,
		label:      contextLabel,
		original:   original,
		tree:       tree,
		displayed:  original,
		language:   SourceLanguage,
	}, nil
}

// Select switches the displayed language. The language tag changes
// immediately; on failure it reverts to the previous one and the error is
// returned. Selecting the current language is a no-op.
func (v *View[T]) Select(ctx context.Context, code string) error {
	lang, err := LookupLanguage(code)
	if err != nil {
		return err
	}

	v.mu.Lock()
	if v.translating {
		v.mu.Unlock()
		return ErrTranslationInFlight
	}
	if lang.IsSource() {
		v.displayed = v.original
		v.language = lang
		v.mu.Unlock()
		return nil
	}
	if lang.Code == v.language.Code {
		v.mu.Unlock()
		return nil
	}

	previous := v.language
	v.language = lang
	v.translating = true
	gen := v.generation
	pristine := v.tree.Clone()
	v.mu.Unlock()

	logging.TranslationDebug("translating %s into %s", v.label, lang.Name)
	translated, err := v.translator.Translate(ctx, pristine, lang, v.label)

	var decoded T
	if err == nil {
		decoded, err = Decode[T](translated)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		// The underlying report was replaced while translating.
		return nil
	}
	v.translating = false
	if err != nil {
		v.language = previous
		logging.TranslationWarn("translation of %s into %s failed: %v", v.label, lang.Name, err)
		return fmt.Errorf("translate %s: %w", v.label, err)
	}
	v.displayed = decoded
	return nil
}

// Reset replaces the original report and reverts to the source language.
// An in-flight translation of the old report is discarded on arrival.
func (v *View[T]) Reset(original T) error {
	tree, err := FromValue(original)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.original = original
	v.tree = tree
	v.displayed = original
	v.language = SourceLanguage
	v.translating = false
	v.generation++
	return nil
}

// Displayed returns the variant currently shown.
func (v *View[T]) Displayed() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.displayed
}

// Language returns the current language tag.
func (v *View[T]) Language() Language {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.language
}

// IsTranslating reports whether a translation is pending.
func (v *View[T]) IsTranslating() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.translating
}
