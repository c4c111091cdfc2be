package recorder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snaprec/snaprec/driver"
	"github.com/snaprec/snaprec/log"
	"github.com/snaprec/snaprec/recipe"
)

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	rec, err := New("session", "", log.NewNullLogger())
	require.NoError(t, err)
	return rec
}

func event(kind driver.RawEventKind, fields driver.RawEvent) driver.RawEvent {
	fields.Kind = kind
	fields.Time = time.Now()
	return fields
}

func TestRecorderCollapsesFills(t *testing.T) {
	t.Parallel()

	rec := newTestRecorder(t)

	// One input event per keystroke; only the last value per selector is
	// kept.
	require.NoError(t, rec.OnEvent(event(driver.RawNavigate, driver.RawEvent{URL: "https://example.com"})))
	for _, v := range []string{"a", "ab", "abc"} {
		require.NoError(t, rec.OnEvent(event(driver.RawInput, driver.RawEvent{Selector: "#email", Value: v})))
	}
	require.NoError(t, rec.OnEvent(event(driver.RawInput, driver.RawEvent{Selector: "#name", Value: "Ada"})))
	require.NoError(t, rec.OnEvent(event(driver.RawClick, driver.RawEvent{Selector: "#submit", Text: "Submit"})))

	r, err := rec.Finish()
	require.NoError(t, err)
	require.Len(t, r.Steps, 4)
	assert.Equal(t, recipe.ActionNavigate, r.Steps[0].Action)
	assert.Equal(t, recipe.ActionFill, r.Steps[1].Action)
	assert.Equal(t, "#email", r.Steps[1].Selector)
	assert.Equal(t, "abc", r.Steps[1].Value)
	assert.Equal(t, "#name", r.Steps[2].Selector)
	assert.Equal(t, recipe.ActionClick, r.Steps[3].Action)
}

func TestRecorderFlushesFillsOnFinish(t *testing.T) {
	t.Parallel()

	rec := newTestRecorder(t)
	require.NoError(t, rec.OnEvent(event(driver.RawInput, driver.RawEvent{Selector: "#email", Value: "{email}"})))

	r, err := rec.Finish()
	require.NoError(t, err)
	require.Len(t, r.Steps, 1)
	assert.Equal(t, recipe.ActionFill, r.Steps[0].Action)
}

func TestRecorderFlushOrderIsFirstTouch(t *testing.T) {
	t.Parallel()

	rec := newTestRecorder(t)
	require.NoError(t, rec.OnEvent(event(driver.RawInput, driver.RawEvent{Selector: "#a", Value: "1"})))
	require.NoError(t, rec.OnEvent(event(driver.RawInput, driver.RawEvent{Selector: "#b", Value: "2"})))
	require.NoError(t, rec.OnEvent(event(driver.RawInput, driver.RawEvent{Selector: "#a", Value: "3"})))
	require.NoError(t, rec.OnEvent(event(driver.RawNavigate, driver.RawEvent{URL: "https://example.com/next"})))

	r, err := rec.Finish()
	require.NoError(t, err)
	require.Len(t, r.Steps, 3)
	assert.Equal(t, "#a", r.Steps[0].Selector)
	assert.Equal(t, "3", r.Steps[0].Value)
	assert.Equal(t, "#b", r.Steps[1].Selector)
	assert.Equal(t, recipe.ActionNavigate, r.Steps[2].Action)
}

func TestRecorderDiscoversPlaceholders(t *testing.T) {
	t.Parallel()

	rec := newTestRecorder(t)
	require.NoError(t, rec.OnEvent(event(driver.RawInput, driver.RawEvent{Selector: "#email", Value: "{email}"})))
	require.NoError(t, rec.OnEvent(event(driver.RawInput, driver.RawEvent{Selector: "#email2", Value: "{email}"})))
	require.NoError(t, rec.OnEvent(event(driver.RawClick, driver.RawEvent{Selector: "#go"})))

	r, err := rec.Finish()
	require.NoError(t, err)
	assert.Equal(t, []string{"email"}, r.Placeholders)
}

func TestRecorderAddWait(t *testing.T) {
	t.Parallel()

	rec := newTestRecorder(t)
	require.NoError(t, rec.OnEvent(event(driver.RawInput, driver.RawEvent{Selector: "#a", Value: "1"})))
	require.NoError(t, rec.AddWait(1500))

	r, err := rec.Finish()
	require.NoError(t, err)
	require.Len(t, r.Steps, 2)
	assert.Equal(t, recipe.ActionFill, r.Steps[0].Action)
	assert.Equal(t, recipe.ActionWait, r.Steps[1].Action)
	assert.Equal(t, int64(1500), r.Steps[1].Duration)
}

func TestRecorderIgnoresUnknownEvents(t *testing.T) {
	t.Parallel()

	rec := newTestRecorder(t)
	require.NoError(t, rec.OnEvent(event("scroll", driver.RawEvent{})))

	r, err := rec.Finish()
	require.NoError(t, err)
	assert.Empty(t, r.Steps)
}
