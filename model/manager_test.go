package model_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamlint/puppr/event"
	"github.com/teamlint/puppr/model"
	"github.com/teamlint/puppr/store"
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

func newManager(t *testing.T, names ...string) (*model.Manager, *recorder) {
	t.Helper()
	s := subject.New("server")
	rec := &recorder{}
	_, err := s.Subscribe(rec, names...)
	require.NoError(t, err)
	return model.NewManager(store.NewMemStore(), s), rec
}

func TestManager_UserEvents(t *testing.T) {
	ctx := context.Background()
	m, rec := newManager(t)

	require.NoError(t, m.AddUser(ctx, model.User{Handle: "ada", Bio: "old"}))
	require.NoError(t, m.SetBio(ctx, "ada", "new"))
	require.NoError(t, m.RemoveUser(ctx, "ada"))

	events := rec.all()
	require.Len(t, events, 3)

	assert.Equal(t, model.PropertyUser, events[0].Name)
	assert.Nil(t, events[0].OldValue)
	assert.Equal(t, model.User{Handle: "ada", Bio: "old"}, events[0].NewValue)

	assert.Equal(t, model.PropertyBio, events[1].Name)
	assert.Equal(t, "old", events[1].OldValue)
	assert.Equal(t, "new", events[1].NewValue)

	assert.Equal(t, model.PropertyUser, events[2].Name)
	assert.Nil(t, events[2].NewValue)
}

func TestManager_InvalidPublishesNothing(t *testing.T) {
	ctx := context.Background()
	m, rec := newManager(t)

	err := m.AddUser(ctx, model.User{})
	assert.ErrorIs(t, err, model.ErrInvalid)

	_, err = m.AddComment(ctx, model.Comment{PostID: 7, Handle: "ada", Body: "hi"})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = m.Like(ctx, model.Like{Kind: "cat", TargetID: 1, Handle: "ada"})
	assert.ErrorIs(t, err, model.ErrInvalid)

	assert.Empty(t, rec.all())
}

func TestManager_FilteredByProperty(t *testing.T) {
	ctx := context.Background()
	m, rec := newManager(t, model.PropertyLike)

	p, err := m.AddPost(ctx, model.Post{Handle: "ada", Text: "park"})
	require.NoError(t, err)
	likes, err := m.Like(ctx, model.Like{Kind: model.LikePost, TargetID: p.ID, Handle: "bob"})
	require.NoError(t, err)
	assert.Equal(t, 1, likes)

	_, err = m.Like(ctx, model.Like{Kind: model.LikePost, TargetID: p.ID, Handle: "bob"})
	assert.ErrorIs(t, err, model.ErrAlreadyLiked)

	events := rec.all()
	require.Len(t, events, 1)
	l, ok := events[0].NewValue.(model.Like)
	require.True(t, ok)
	assert.Equal(t, 1, l.Likes)
	assert.Equal(t, "bob", l.Handle)
}

func TestManager_EditCarriesOldValue(t *testing.T) {
	ctx := context.Background()
	m, rec := newManager(t, model.PropertyDog)

	d, err := m.AddDog(ctx, model.Dog{Name: "Rex", Owner: "ada"})
	require.NoError(t, err)
	edited := d
	edited.Info = "likes sticks"
	require.NoError(t, m.EditDog(ctx, edited))

	events := rec.all()
	require.Len(t, events, 2)
	assert.Equal(t, d, events[1].OldValue)
	assert.Equal(t, edited, events[1].NewValue)

	err = m.EditDog(ctx, model.Dog{ID: 999, Name: "Ghost", Owner: "ada"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestManager_EditCommentAnnouncesStoredComment(t *testing.T) {
	ctx := context.Background()
	m, rec := newManager(t, model.PropertyComment)

	p, err := m.AddPost(ctx, model.Post{Handle: "ada", Text: "park"})
	require.NoError(t, err)
	c, err := m.AddComment(ctx, model.Comment{PostID: p.ID, Handle: "bob", Body: "nice"})
	require.NoError(t, err)
	_, err = m.Like(ctx, model.Like{Kind: model.LikeComment, TargetID: c.ID, Handle: "ada"})
	require.NoError(t, err)

	require.NoError(t, m.EditComment(ctx, model.Comment{ID: c.ID, PostID: p.ID, Handle: "mallory", Body: "edited"}))

	stored, err := m.Comment(ctx, c.ID)
	require.NoError(t, err)
	events := rec.all()
	require.Len(t, events, 2)
	got, ok := events[1].NewValue.(model.Comment)
	require.True(t, ok)
	assert.Equal(t, stored, got)
	assert.Equal(t, 1, got.Likes)
	assert.Equal(t, "bob", got.Handle)
	assert.Equal(t, "edited", got.Body)
}
