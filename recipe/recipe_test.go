package recipe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		r, err := New("login", "log into the portal")
		require.NoError(t, err)
		assert.Equal(t, "login", r.Name)
		assert.Equal(t, "log into the portal", r.Description)
		assert.False(t, r.Created.IsZero())
		assert.Empty(t, r.Steps)
	})

	t.Run("empty_name", func(t *testing.T) {
		t.Parallel()

		_, err := New("", "")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})
}

func TestAddStepDiscoversPlaceholders(t *testing.T) {
	t.Parallel()

	r, err := New("signup", "")
	require.NoError(t, err)

	require.NoError(t, r.AddStep(Navigate("https://example.com/{tenant}/signup")))
	require.NoError(t, r.AddStep(Fill("#email", "{email}")))
	require.NoError(t, r.AddStep(Fill("#email-confirm", "{email}")))
	require.NoError(t, r.AddStep(Fill("#name", "{first}.{last}")))

	// Repeated references declare a name exactly once.
	assert.Equal(t, []string{"tenant", "email", "first", "last"}, r.Placeholders)
	assert.Len(t, r.Steps, 4)
}

func TestAddStepRejectsMalformedSteps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		step Step
	}{
		{"navigate_no_url", Step{Action: ActionNavigate}},
		{"click_no_selector", Step{Action: ActionClick}},
		{"fill_no_selector", Step{Action: ActionFill, Value: "x"}},
		{"negative_wait", Step{Action: ActionWait, Duration: -5}},
		{"unknown_action", Step{Action: "hover", Selector: "#a"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := New("r", "")
			require.NoError(t, err)
			err = r.AddStep(tt.step)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Empty(t, r.Steps)
		})
	}
}

func TestValidateUndeclaredPlaceholder(t *testing.T) {
	t.Parallel()

	r := &Recipe{
		Name:  "r",
		Steps: []Step{Fill("#email", "{email}")},
	}
	err := r.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "email")

	r.Placeholders = []string{"email"}
	assert.NoError(t, r.Validate())
}

func TestRecipeRoundTrip(t *testing.T) {
	t.Parallel()

	r, err := New("checkout", "buy the thing")
	require.NoError(t, err)
	require.NoError(t, r.AddStep(Navigate("https://shop.example/{store}")))
	require.NoError(t, r.AddStep(Click("#add-to-cart", "Add to cart")))
	require.NoError(t, r.AddStep(Wait(1500)))
	require.NoError(t, r.AddStep(Fill("#email", "{email}")))
	require.NoError(t, r.AddStep(Click("button[type=submit]", "")))

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var got Recipe
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, r.Name, got.Name)
	assert.Equal(t, r.Description, got.Description)
	assert.True(t, r.Created.Equal(got.Created))
	assert.Equal(t, r.Placeholders, got.Placeholders)
	require.Len(t, got.Steps, len(r.Steps))
	for i, want := range r.Steps {
		assert.Equal(t, want.Action, got.Steps[i].Action, "step %d", i)
		assert.Equal(t, want.URL, got.Steps[i].URL, "step %d", i)
		assert.Equal(t, want.Selector, got.Steps[i].Selector, "step %d", i)
		assert.Equal(t, want.Value, got.Steps[i].Value, "step %d", i)
		assert.Equal(t, want.Duration, got.Steps[i].Duration, "step %d", i)
		assert.Equal(t, want.Text, got.Steps[i].Text, "step %d", i)
		assert.True(t, want.Timestamp.Equal(got.Steps[i].Timestamp), "step %d", i)
	}
}

func TestStepWireFormat(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Step{Action: ActionFill, Selector: "#email", Value: "{email}"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"fill","selector":"#email","value":"{email}"}`, string(data))

	data, err = json.Marshal(Step{Action: ActionWait, Duration: 0})
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"wait","duration":0}`, string(data))

	// A click's label is kept on the wire only when one was captured.
	data, err = json.Marshal(Click("#go", "Go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"text":"Go"`)
	data, err = json.Marshal(Step{Action: ActionClick, Selector: "#go"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"text"`)
}

func TestRecipeUnmarshalMissingSteps(t *testing.T) {
	t.Parallel()

	doc := `{"name":"r","description":"","created":"2025-01-02T10:00:00Z","placeholders":[]}`
	var r Recipe
	err := json.Unmarshal([]byte(doc), &r)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "steps")
}
