package daos

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joe-ervin05/brick/tools"
)

func TestPreferencesRequireBricking(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	bricked, err := db.IsBricked(ctx)
	require.NoError(t, err)
	assert.False(t, bricked)

	_, err = db.Preferences(ctx, nil)
	assert.ErrorIs(t, err, tools.ErrNotBricked)
	assert.ErrorIs(t, db.SetPreference(ctx, "k", "", json.RawMessage(`"v"`)), tools.ErrNotBricked)
	assert.ErrorIs(t, db.DeletePreference(ctx, "k", ""), tools.ErrNotBricked)

	require.NoError(t, db.BrickUp(ctx))
	require.NoError(t, db.BrickUp(ctx))

	bricked, err = db.IsBricked(ctx)
	require.NoError(t, err)
	assert.True(t, bricked)

	prefs, err := db.Preferences(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, prefs)
	assert.NotNil(t, prefs)
}

func TestPreferenceScopes(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	require.NoError(t, db.BrickUp(ctx))

	require.NoError(t, db.SetPreference(ctx, "theme", "", json.RawMessage(`"dark"`)))
	require.NoError(t, db.SetPreference(ctx, "color", "tasks", json.RawMessage(`"cyan"`)))
	require.NoError(t, db.SetPreference(ctx, "width", "tasks", json.RawMessage(`240`)))

	global := ""
	prefs, err := db.Preferences(ctx, &global)
	require.NoError(t, err)
	assert.Equal(t, []Preference{{Key: "theme", Scope: "", Value: "dark"}}, prefs)

	tasks := "tasks"
	prefs, err = db.Preferences(ctx, &tasks)
	require.NoError(t, err)
	assert.Equal(t, []Preference{
		{Key: "color", Scope: "tasks", Value: "cyan"},
		{Key: "width", Scope: "tasks", Value: "240"},
	}, prefs)

	all, err := db.Preferences(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSetPreferenceUpserts(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	require.NoError(t, db.BrickUp(ctx))

	require.NoError(t, db.SetPreference(ctx, "theme", "", json.RawMessage(`"dark"`)))
	require.NoError(t, db.SetPreference(ctx, "theme", "", json.RawMessage(`"light"`)))

	prefs, err := db.Preferences(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []Preference{{Key: "theme", Scope: "", Value: "light"}}, prefs)
}

func TestSetPreferenceValues(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	require.NoError(t, db.BrickUp(ctx))

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"string", `"dark"`, "dark"},
		{"escaped string", `"a \"b\""`, `a "b"`},
		{"number", `12.5`, "12.5"},
		{"bool", `true`, "true"},
		{"null", `null`, "null"},
		{"object is compacted", `{ "a" : [1, 2] }`, `{"a":[1,2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, db.SetPreference(ctx, "k", tt.name, json.RawMessage(tt.raw)))

			scope := tt.name
			prefs, err := db.Preferences(ctx, &scope)
			require.NoError(t, err)
			require.Len(t, prefs, 1)
			assert.Equal(t, tt.want, prefs[0].Value)
		})
	}
}

func TestSetPreferenceValidation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	require.NoError(t, db.BrickUp(ctx))

	assert.ErrorIs(t, db.SetPreference(ctx, "", "", json.RawMessage(`"v"`)), tools.ErrInvalidRequest)
	assert.ErrorIs(t, db.SetPreference(ctx, "k", "", nil), tools.ErrInvalidRequest)
	assert.ErrorIs(t, db.SetPreference(ctx, "k", "", json.RawMessage(`{broken`)), tools.ErrInvalidJSON)
}

func TestDeletePreference(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	require.NoError(t, db.BrickUp(ctx))
	require.NoError(t, db.SetPreference(ctx, "theme", "", json.RawMessage(`"dark"`)))
	require.NoError(t, db.SetPreference(ctx, "theme", "tasks", json.RawMessage(`"light"`)))

	require.NoError(t, db.DeletePreference(ctx, "theme", "tasks"))
	require.NoError(t, db.DeletePreference(ctx, "theme", "tasks"))
	require.NoError(t, db.DeletePreference(ctx, "never-set", ""))

	prefs, err := db.Preferences(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []Preference{{Key: "theme", Scope: "", Value: "dark"}}, prefs)
}
