package subject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamlint/puppr/event"
)

func TestRegistryPutKeepsOrder(t *testing.T) {
	r := NewRegistry()
	a, b, c := &recorder{}, &recorder{}, &recorder{}

	r.Put(a, event.All())
	r.Put(b, event.Named("post"))
	r.Put(c, event.All())

	_, replaced := r.Put(b, event.Named("dog"))
	assert.True(t, replaced)

	subs := r.Snapshot()
	require.Len(t, subs, 3)
	assert.Equal(t, Listener(a), subs[0].Listener)
	assert.Equal(t, Listener(b), subs[1].Listener)
	assert.Equal(t, Listener(c), subs[2].Listener)
	assert.Equal(t, []string{"dog"}, subs[1].Filter.Names())
}

func TestRegistrySnapshotIsStable(t *testing.T) {
	r := NewRegistry()
	a, b := &recorder{}, &recorder{}
	r.Put(a, event.All())

	snap := r.Snapshot()
	r.Put(b, event.All())
	r.Remove(a)

	require.Len(t, snap, 1)
	assert.Equal(t, Listener(a), snap[0].Listener)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryRemove(t *testing.T) {
	tests := []struct {
		name    string
		filter  event.Filter
		remove  []string
		want    bool
		wantLen int
		left    []string
	}{
		{name: "whole all", filter: event.All(), remove: nil, want: true, wantLen: 0},
		{name: "whole named", filter: event.Named("post", "dog"), remove: nil, want: true, wantLen: 0},
		{name: "some names", filter: event.Named("post", "dog"), remove: []string{"dog"}, want: true, wantLen: 1, left: []string{"post"}},
		{name: "last names", filter: event.Named("post", "dog"), remove: []string{"dog", "post"}, want: true, wantLen: 0},
		{name: "unknown name", filter: event.Named("post"), remove: []string{"user"}, want: false, wantLen: 1, left: []string{"post"}},
		{name: "names from all", filter: event.All(), remove: []string{"post"}, want: false, wantLen: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			l := &recorder{}
			r.Put(l, tt.filter)

			assert.Equal(t, tt.want, r.Remove(l, tt.remove...))
			assert.Equal(t, tt.wantLen, r.Len())
			if tt.left != nil {
				sub, ok := r.Lookup(l)
				require.True(t, ok)
				assert.Equal(t, tt.left, sub.Filter.Names())
			}
		})
	}
}

func TestRegistryEvictIgnoresReplaced(t *testing.T) {
	r := NewRegistry()
	l := &recorder{}
	old, _ := r.Put(l, event.All())
	r.Put(l, event.Named("post"))

	assert.False(t, r.Evict(old.ID))
	assert.Equal(t, 1, r.Len())

	cur, ok := r.Lookup(l)
	require.True(t, ok)
	assert.True(t, r.Evict(cur.ID))
	assert.Equal(t, 0, r.Len())
}
