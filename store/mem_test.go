package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamlint/puppr/model"
)

func TestMemStore_Users(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	require.NoError(t, s.AddUser(ctx, model.User{Handle: "rex", Name: "Rex"}))
	require.NoError(t, s.AddUser(ctx, model.User{Handle: "ada"}))
	assert.ErrorIs(t, s.AddUser(ctx, model.User{Handle: "rex"}), model.ErrExists)

	require.NoError(t, s.SetBio(ctx, "rex", "good boy"))
	u, err := s.User(ctx, "rex")
	require.NoError(t, err)
	assert.Equal(t, "Rex", u.Name)
	assert.Equal(t, "good boy", u.Bio)

	users, err := s.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "ada", users[0].Handle)

	assert.ErrorIs(t, s.EditUser(ctx, model.User{Handle: "nobody"}), model.ErrNotFound)
	assert.ErrorIs(t, s.SetBio(ctx, "nobody", "x"), model.ErrNotFound)
	require.NoError(t, s.RemoveUser(ctx, "ada"))
	_, err = s.User(ctx, "ada")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMemStore_PostsAndComments(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	p, err := s.AddPost(ctx, model.Post{Handle: "rex", Text: "walk", TimePosted: time.Now()})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)

	_, err = s.AddComment(ctx, model.Comment{PostID: p.ID + 100, Handle: "ada", Body: "hi"})
	assert.ErrorIs(t, err, model.ErrNotFound)

	c, err := s.AddComment(ctx, model.Comment{PostID: p.ID, Handle: "ada", Body: "hi"})
	require.NoError(t, err)

	require.NoError(t, s.EditComment(ctx, model.Comment{ID: c.ID, Handle: "mallory", Body: "hello"}))
	got, err := s.Comment(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Body)
	assert.Equal(t, "ada", got.Handle)

	posts, err := s.Posts(ctx, "ada")
	require.NoError(t, err)
	assert.Empty(t, posts)

	require.NoError(t, s.RemovePost(ctx, p.ID))
	comments, err := s.Comments(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.ErrorIs(t, s.RemovePost(ctx, p.ID), model.ErrNotFound)
}

func TestMemStore_AddLike(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	d, err := s.AddDog(ctx, model.Dog{Name: "Rex", Owner: "ada"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		like  model.Like
		likes int
		err   error
	}{
		{
			name:  "first like",
			like:  model.Like{Kind: model.LikeDog, TargetID: d.ID, Handle: "ada"},
			likes: 1,
		},
		{
			name:  "second user",
			like:  model.Like{Kind: model.LikeDog, TargetID: d.ID, Handle: "bob"},
			likes: 2,
		},
		{
			name: "duplicate",
			like: model.Like{Kind: model.LikeDog, TargetID: d.ID, Handle: "ada"},
			err:  model.ErrAlreadyLiked,
		},
		{
			name: "missing target",
			like: model.Like{Kind: model.LikePost, TargetID: 42, Handle: "ada"},
			err:  model.ErrNotFound,
		},
		{
			name: "unknown kind",
			like: model.Like{Kind: "cat", TargetID: d.ID, Handle: "ada"},
			err:  model.ErrInvalid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			likes, err := s.AddLike(ctx, tt.like)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.likes, likes)
		})
	}

	got, err := s.Dog(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Likes)

	likes, err := s.Likes(ctx, model.LikeDog)
	require.NoError(t, err)
	assert.Len(t, likes, 2)
}

func TestMemStore_RemoveDropsLikes(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	p, err := s.AddPost(ctx, model.Post{Handle: "ada"})
	require.NoError(t, err)
	kept, err := s.AddPost(ctx, model.Post{Handle: "ada"})
	require.NoError(t, err)
	c, err := s.AddComment(ctx, model.Comment{PostID: p.ID, Handle: "bob", Body: "hi"})
	require.NoError(t, err)
	d, err := s.AddDog(ctx, model.Dog{Name: "Rex", Owner: "ada"})
	require.NoError(t, err)

	for _, l := range []model.Like{
		{Kind: model.LikePost, TargetID: p.ID, Handle: "bob"},
		{Kind: model.LikePost, TargetID: kept.ID, Handle: "bob"},
		{Kind: model.LikeComment, TargetID: c.ID, Handle: "ada"},
		{Kind: model.LikeDog, TargetID: d.ID, Handle: "bob"},
	} {
		_, err := s.AddLike(ctx, l)
		require.NoError(t, err)
	}

	require.NoError(t, s.RemovePost(ctx, p.ID))
	require.NoError(t, s.RemoveDog(ctx, d.ID))

	likes, err := s.Likes(ctx, model.LikePost)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, kept.ID, likes[0].TargetID)

	likes, err = s.Likes(ctx, model.LikeComment)
	require.NoError(t, err)
	assert.Empty(t, likes)

	likes, err = s.Likes(ctx, model.LikeDog)
	require.NoError(t, err)
	assert.Empty(t, likes)

	// a recreated target can be liked again by the same handle
	d, err = s.AddDog(ctx, model.Dog{Name: "Rex", Owner: "ada"})
	require.NoError(t, err)
	n, err := s.AddLike(ctx, model.Like{Kind: model.LikeDog, TargetID: d.ID, Handle: "bob"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemStore_RemoveCommentDropsLikes(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	p, err := s.AddPost(ctx, model.Post{Handle: "ada"})
	require.NoError(t, err)
	c, err := s.AddComment(ctx, model.Comment{PostID: p.ID, Handle: "bob", Body: "hi"})
	require.NoError(t, err)
	_, err = s.AddLike(ctx, model.Like{Kind: model.LikeComment, TargetID: c.ID, Handle: "ada"})
	require.NoError(t, err)

	require.NoError(t, s.RemoveComment(ctx, c.ID))
	likes, err := s.Likes(ctx, model.LikeComment)
	require.NoError(t, err)
	assert.Empty(t, likes)
}
