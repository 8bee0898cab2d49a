package model

import (
	"context"

	"github.com/pkg/errors"
)

// Variables with store errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrExists       = errors.New("already exists")
	ErrAlreadyLiked = errors.New("already liked")
	ErrInvalid      = errors.New("invalid entity")
)

// Store persists the social network's entities.
type Store interface {
	AddUser(ctx context.Context, u User) error
	EditUser(ctx context.Context, u User) error
	RemoveUser(ctx context.Context, handle string) error
	SetBio(ctx context.Context, handle, bio string) error
	User(ctx context.Context, handle string) (User, error)
	Users(ctx context.Context) ([]User, error)

	AddPost(ctx context.Context, p Post) (Post, error)
	EditPost(ctx context.Context, p Post) error
	RemovePost(ctx context.Context, id int) error
	Post(ctx context.Context, id int) (Post, error)
	Posts(ctx context.Context, handle string) ([]Post, error)

	AddComment(ctx context.Context, c Comment) (Comment, error)
	EditComment(ctx context.Context, c Comment) error
	RemoveComment(ctx context.Context, id int) error
	Comment(ctx context.Context, id int) (Comment, error)
	Comments(ctx context.Context, postID int) ([]Comment, error)

	AddDog(ctx context.Context, d Dog) (Dog, error)
	EditDog(ctx context.Context, d Dog) error
	RemoveDog(ctx context.Context, id int) error
	Dog(ctx context.Context, id int) (Dog, error)
	Dogs(ctx context.Context, owner string) ([]Dog, error)

	// AddLike records l and returns the target's new like count.
	AddLike(ctx context.Context, l Like) (int, error)
	Likes(ctx context.Context, kind LikeKind) ([]Like, error)

	IsAlive() bool
	Close() error
}
