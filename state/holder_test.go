package state

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamlint/puppr/event"
	"github.com/teamlint/puppr/subject"
)

type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) Notify(_ context.Context, evt event.Event) error {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
	return nil
}

func (r *recorder) all() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Event(nil), r.events...)
}

func TestHolder_CachesAndRepublishes(t *testing.T) {
	upstream := subject.New("client")
	h, err := NewHolder("profile", upstream, "bio", "user")
	require.NoError(t, err)

	ui := &recorder{}
	_, err = h.Subject().Subscribe(ui, "bio")
	require.NoError(t, err)

	require.NoError(t, upstream.Publish("bio", "old", "new"))
	require.NoError(t, upstream.Publish("user", nil, "ada"))
	require.NoError(t, upstream.Publish("post", nil, 1))

	v, ok := h.Value("bio")
	assert.True(t, ok)
	assert.Equal(t, "new", v)
	v, ok = h.Value("user")
	assert.True(t, ok)
	assert.Equal(t, "ada", v)
	_, ok = h.Value("post")
	assert.False(t, ok)

	events := ui.all()
	require.Len(t, events, 1)
	assert.Equal(t, "new", events[0].NewValue)
}

func TestHolder_Close(t *testing.T) {
	upstream := subject.New("client")
	h, err := NewHolder("feed", upstream)
	require.NoError(t, err)
	_, err = h.Subject().Subscribe(&recorder{})
	require.NoError(t, err)

	require.NoError(t, h.Close())
	assert.Equal(t, 0, upstream.Len())
	assert.Equal(t, 0, h.Subject().Len())
}
