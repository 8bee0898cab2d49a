package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	evt := New("post", nil, "X")

	assert.Equal(t, "post", evt.Name)
	assert.Nil(t, evt.OldValue)
	assert.Equal(t, "X", evt.NewValue)
	assert.NotEqual(t, evt.ID, New("post", nil, "X").ID)
	assert.False(t, evt.Time.IsZero())
}

func TestEventJSON(t *testing.T) {
	evt := New("comment", "old body", map[string]interface{}{"body": "new body", "likes": 2.0})

	data, err := evt.MarshalJSON()
	require.NoError(t, err)

	var got Event
	require.NoError(t, got.UnmarshalJSON(data))
	assert.Equal(t, evt.ID, got.ID)
	assert.Equal(t, evt.Name, got.Name)
	assert.Equal(t, evt.OldValue, got.OldValue)
	assert.Equal(t, evt.NewValue, got.NewValue)
	assert.True(t, evt.Time.Equal(got.Time))
}

func TestEventJSONNullValues(t *testing.T) {
	var got Event
	require.NoError(t, got.UnmarshalJSON([]byte(`{"name":"user","old_value":null,"new_value":"bob","extra":{"x":1}}`)))
	assert.Equal(t, "user", got.Name)
	assert.Nil(t, got.OldValue)
	assert.Equal(t, "bob", got.NewValue)
}

func TestGetSubject(t *testing.T) {
	evt := New("post", nil, nil)
	assert.Equal(t, "puppr_post", evt.GetSubject("puppr"))
	assert.Equal(t, "post", evt.GetSubject(""))
}
