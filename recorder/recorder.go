// Package recorder translates raw captured browser events into canonical
// recipe steps. It is the boundary to the event-capture subsystem: the
// driver reports what happened in the page, the recorder decides what ends
// up in the recipe.
package recorder

import (
	"github.com/snaprec/snaprec/driver"
	"github.com/snaprec/snaprec/log"
	"github.com/snaprec/snaprec/recipe"
)

// Recorder builds a recipe from a stream of raw events.
//
// Typing into a field fires one input event per keystroke. Instead of
// recording each intermediate value, the recorder keeps only the latest fill
// per selector and flushes pending fills, in first-touch order, before any
// non-fill step and when recording finishes.
type Recorder struct {
	recipe *recipe.Recipe
	logger *log.Logger

	pendingFills map[string]recipe.Step
	fillOrder    []string
}

// New starts a recording session for a recipe with the given name.
func New(name, description string, logger *log.Logger) (*Recorder, error) {
	r, err := recipe.New(name, description)
	if err != nil {
		return nil, err
	}
	return &Recorder{
		recipe:       r,
		logger:       logger,
		pendingFills: make(map[string]recipe.Step),
	}, nil
}

// OnEvent canonicalizes one captured event into the recipe under
// construction.
func (rec *Recorder) OnEvent(ev driver.RawEvent) error {
	switch ev.Kind {
	case driver.RawInput:
		step := recipe.Fill(ev.Selector, ev.Value)
		step.Timestamp = ev.Time
		if _, seen := rec.pendingFills[ev.Selector]; !seen {
			rec.fillOrder = append(rec.fillOrder, ev.Selector)
		}
		rec.pendingFills[ev.Selector] = step
		rec.logger.Debugf("recorder", "fill %q = %q", ev.Selector, ev.Value)
		return nil
	case driver.RawClick:
		if err := rec.flushFills(); err != nil {
			return err
		}
		step := recipe.Click(ev.Selector, ev.Text)
		step.Timestamp = ev.Time
		rec.logger.Infof("recorder", "recorded click %q", ev.Selector)
		return rec.recipe.AddStep(step)
	case driver.RawNavigate:
		if err := rec.flushFills(); err != nil {
			return err
		}
		step := recipe.Navigate(ev.URL)
		step.Timestamp = ev.Time
		rec.logger.Infof("recorder", "recorded navigate %q", ev.URL)
		return rec.recipe.AddStep(step)
	}
	rec.logger.Warnf("recorder", "ignoring unknown event kind %q", ev.Kind)
	return nil
}

// AddWait appends an explicit wait step of the given duration in
// milliseconds. Waits are never captured; the operator inserts them.
func (rec *Recorder) AddWait(ms int64) error {
	if err := rec.flushFills(); err != nil {
		return err
	}
	return rec.recipe.AddStep(recipe.Wait(ms))
}

// Finish flushes any pending fills and returns the recorded recipe.
func (rec *Recorder) Finish() (*recipe.Recipe, error) {
	if err := rec.flushFills(); err != nil {
		return nil, err
	}
	rec.logger.Infof("recorder", "recorded %d steps for %q", len(rec.recipe.Steps), rec.recipe.Name)
	return rec.recipe, nil
}

func (rec *Recorder) flushFills() error {
	for _, selector := range rec.fillOrder {
		if err := rec.recipe.AddStep(rec.pendingFills[selector]); err != nil {
			return err
		}
		delete(rec.pendingFills, selector)
	}
	rec.fillOrder = rec.fillOrder[:0]
	return nil
}
