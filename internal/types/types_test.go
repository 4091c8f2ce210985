package types

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional(t *testing.T) {
	var body struct {
		Title       Optional[string] `json:"title"`
		Description Optional[string] `json:"description"`
		Servings    Optional[int]    `json:"servings"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Soup","description":null}`), &body))

	assert.True(t, body.Title.Present())
	assert.Equal(t, "Soup", *body.Title.Ptr())

	assert.True(t, body.Description.Set)
	assert.True(t, body.Description.Null)
	assert.Nil(t, body.Description.Ptr())

	assert.False(t, body.Servings.Set)
	assert.Nil(t, body.Servings.Ptr())

	require.NoError(t, json.Unmarshal([]byte(`{"servings":"four","title":42}`), &body))
	assert.True(t, body.Servings.Set)
	assert.True(t, body.Servings.Invalid)
	assert.False(t, body.Servings.Present())
	assert.Nil(t, body.Servings.Ptr())
	assert.True(t, body.Title.Invalid)
	assert.Empty(t, body.Title.Value)

	var syntax *json.SyntaxError
	assert.ErrorAs(t, json.Unmarshal([]byte(`{"servings":`), &body), &syntax)
}

func TestFlexUint64(t *testing.T) {
	tests := []struct {
		in      string
		want    FlexUint64
		wantErr bool
	}{
		{`7`, 7, false},
		{`"42"`, 42, false},
		{`" 9 "`, 9, false},
		{`""`, 0, false},
		{`"-1"`, 0, true},
		{`"abc"`, 0, true},
		{`true`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got FlexUint64
			err := json.Unmarshal([]byte(tt.in), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	out, err := json.Marshal(FlexUint64(5))
	require.NoError(t, err)
	assert.Equal(t, `5`, string(out))
}

func TestFlexList(t *testing.T) {
	var list FlexList[FlexUint64]
	require.NoError(t, json.Unmarshal([]byte(`[3, "4", 3, 5]`), &list))
	assert.Equal(t, FlexList[FlexUint64]{3, 4, 3, 5}, list)
	assert.Equal(t, []FlexUint64{3, 4, 5}, list.Unique())

	require.NoError(t, json.Unmarshal([]byte(`"8"`), &list))
	assert.Equal(t, FlexList[FlexUint64]{8}, list)

	require.NoError(t, json.Unmarshal([]byte(`null`), &list))
	assert.Nil(t, list)
	assert.Empty(t, list.Unique())
}

func TestFieldErrors(t *testing.T) {
	errs := FieldErrors{}
	assert.NoError(t, errs.Err())

	errs.Add("title", "The title field is required.")
	err := errs.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	ce, ok := AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, ce.Code)
	assert.Equal(t, "The title field is required.", ce.Message)

	errs.Add("steps", "The steps field is required.")
	errs.Add("steps", "Another steps problem.")
	ce, _ = AsCustomError(errs.Err())
	assert.Equal(t, "The steps field is required. (and 2 more errors)", ce.Message)
	assert.True(t, errs.Has("steps"))
	assert.False(t, errs.Has("cuisine_id"))
}

func TestCustomErrorMatching(t *testing.T) {
	err := NotFound("Recipe")
	assert.Equal(t, "Recipe not found", err.Message)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrForbidden)

	cause := errors.New("connection reset")
	wrapped := Persistence("Error creating recipe", cause)
	assert.ErrorIs(t, wrapped, cause)
	assert.ErrorIs(t, wrapped, ErrPersistence)
	assert.Contains(t, wrapped.Error(), "connection reset")

	assert.ErrorIs(t, InUse("in use"), ErrInUse)

	_, ok := AsCustomError(cause)
	assert.False(t, ok)
}
