package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerValueWireShape(t *testing.T) {
	t.Run("single value marshals to a bare string", func(t *testing.T) {
		raw, err := json.Marshal(TextAnswer("hello"))
		require.NoError(t, err)
		assert.JSONEq(t, `"hello"`, string(raw))
	})

	t.Run("selection set marshals to a string array", func(t *testing.T) {
		a := uuid.MustParse("11111111-1111-1111-1111-111111111111")
		b := uuid.MustParse("22222222-2222-2222-2222-222222222222")
		raw, err := json.Marshal(OptionsAnswer(a, b))
		require.NoError(t, err)
		assert.JSONEq(t, `["11111111-1111-1111-1111-111111111111","22222222-2222-2222-2222-222222222222"]`, string(raw))
	})

	t.Run("empty set marshals to an empty array, not null", func(t *testing.T) {
		raw, err := json.Marshal(OptionsAnswer())
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(raw))
	})

	t.Run("string unmarshals as single", func(t *testing.T) {
		var v AnswerValue
		require.NoError(t, json.Unmarshal([]byte(`"hi"`), &v))
		assert.False(t, v.IsMulti())
		assert.Equal(t, "hi", v.Text())
	})

	t.Run("array unmarshals as set", func(t *testing.T) {
		var v AnswerValue
		require.NoError(t, json.Unmarshal([]byte(`["a","b"]`), &v))
		assert.True(t, v.IsMulti())
		assert.Equal(t, []string{"a", "b"}, v.Selections())
	})

	t.Run("rejects other shapes", func(t *testing.T) {
		var v AnswerValue
		assert.Error(t, json.Unmarshal([]byte(`42`), &v))
	})
}

func TestAnswerValueIsEmpty(t *testing.T) {
	assert.True(t, TextAnswer("").IsEmpty())
	assert.False(t, TextAnswer("x").IsEmpty())
	assert.True(t, OptionsAnswer().IsEmpty())
	assert.False(t, OptionsAnswer(uuid.New()).IsEmpty())
	assert.True(t, AnswerValue{}.IsEmpty())
}

func TestWithToggled(t *testing.T) {
	a := "opt-a"
	b := "opt-b"

	v := AnswerValue{}.WithToggled(a)
	assert.Equal(t, []string{a}, v.Selections())

	v = v.WithToggled(b)
	assert.Equal(t, []string{a, b}, v.Selections())

	// Toggling an existing member removes it and keeps the rest.
	v = v.WithToggled(a)
	assert.Equal(t, []string{b}, v.Selections())

	// Double toggle restores the set.
	v2 := v.WithToggled(a).WithToggled(a)
	assert.Equal(t, v.Selections(), v2.Selections())
}

func TestAnswerSetClone(t *testing.T) {
	set := AnswerSet{"q1": TextAnswer("x")}
	clone := set.Clone()
	clone["q1"] = TextAnswer("y")
	assert.Equal(t, "x", set["q1"].Text())
}
