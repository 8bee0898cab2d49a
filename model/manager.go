package model

import (
	"context"

	"github.com/asaskevich/govalidator"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/teamlint/puppr/subject"
)

// Manager applies changes to the store and announces each one on the
// server subject. Reads go straight to the store.
type Manager struct {
	store   Store
	subject *subject.Subject
}

// NewManager creates a manager announcing on s.
func NewManager(store Store, s *subject.Subject) *Manager {
	return &Manager{store: store, subject: s}
}

// Subject returns the subject changes are announced on.
func (m *Manager) Subject() *subject.Subject {
	return m.subject
}

func (m *Manager) publish(ctx context.Context, name string, oldValue, newValue interface{}) {
	if err := m.subject.PublishContext(ctx, name, oldValue, newValue); err != nil {
		logrus.WithError(err).WithField("property", name).Errorln("publish change")
	}
}

func validate(v interface{}) error {
	if _, err := govalidator.ValidateStruct(v); err != nil {
		return errors.Wrap(ErrInvalid, err.Error())
	}
	return nil
}

// AddUser creates a user.
func (m *Manager) AddUser(ctx context.Context, u User) error {
	if err := validate(u); err != nil {
		return err
	}
	if err := m.store.AddUser(ctx, u); err != nil {
		return errors.Wrap(err, "add user")
	}
	m.publish(ctx, PropertyUser, nil, u)
	return nil
}

// EditUser updates a user.
func (m *Manager) EditUser(ctx context.Context, u User) error {
	if err := validate(u); err != nil {
		return err
	}
	old, err := m.store.User(ctx, u.Handle)
	if err != nil {
		return errors.Wrap(err, "edit user")
	}
	if err := m.store.EditUser(ctx, u); err != nil {
		return errors.Wrap(err, "edit user")
	}
	m.publish(ctx, PropertyUser, old, u)
	return nil
}

// RemoveUser deletes a user.
func (m *Manager) RemoveUser(ctx context.Context, handle string) error {
	old, err := m.store.User(ctx, handle)
	if err != nil {
		return errors.Wrap(err, "remove user")
	}
	if err := m.store.RemoveUser(ctx, handle); err != nil {
		return errors.Wrap(err, "remove user")
	}
	m.publish(ctx, PropertyUser, old, nil)
	return nil
}

// SetBio changes a user's bio.
func (m *Manager) SetBio(ctx context.Context, handle, bio string) error {
	old, err := m.store.User(ctx, handle)
	if err != nil {
		return errors.Wrap(err, "set bio")
	}
	if err := m.store.SetBio(ctx, handle, bio); err != nil {
		return errors.Wrap(err, "set bio")
	}
	m.publish(ctx, PropertyBio, old.Bio, bio)
	return nil
}

// User returns the user with the given handle.
func (m *Manager) User(ctx context.Context, handle string) (User, error) {
	return m.store.User(ctx, handle)
}

// Users returns every user.
func (m *Manager) Users(ctx context.Context) ([]User, error) {
	return m.store.Users(ctx)
}

// AddPost creates a post and returns it with its id.
func (m *Manager) AddPost(ctx context.Context, p Post) (Post, error) {
	if err := validate(p); err != nil {
		return Post{}, err
	}
	p, err := m.store.AddPost(ctx, p)
	if err != nil {
		return Post{}, errors.Wrap(err, "add post")
	}
	m.publish(ctx, PropertyPost, nil, p)
	return p, nil
}

// EditPost updates a post.
func (m *Manager) EditPost(ctx context.Context, p Post) error {
	if err := validate(p); err != nil {
		return err
	}
	old, err := m.store.Post(ctx, p.ID)
	if err != nil {
		return errors.Wrap(err, "edit post")
	}
	if err := m.store.EditPost(ctx, p); err != nil {
		return errors.Wrap(err, "edit post")
	}
	m.publish(ctx, PropertyPost, old, p)
	return nil
}

// RemovePost deletes a post.
func (m *Manager) RemovePost(ctx context.Context, id int) error {
	old, err := m.store.Post(ctx, id)
	if err != nil {
		return errors.Wrap(err, "remove post")
	}
	if err := m.store.RemovePost(ctx, id); err != nil {
		return errors.Wrap(err, "remove post")
	}
	m.publish(ctx, PropertyPost, old, nil)
	return nil
}

// Post returns one post.
func (m *Manager) Post(ctx context.Context, id int) (Post, error) {
	return m.store.Post(ctx, id)
}

// Posts returns the posts of handle, or all posts when handle is empty.
func (m *Manager) Posts(ctx context.Context, handle string) ([]Post, error) {
	return m.store.Posts(ctx, handle)
}

// AddComment creates a comment.
func (m *Manager) AddComment(ctx context.Context, c Comment) (Comment, error) {
	if err := validate(c); err != nil {
		return Comment{}, err
	}
	c, err := m.store.AddComment(ctx, c)
	if err != nil {
		return Comment{}, errors.Wrap(err, "add comment")
	}
	m.publish(ctx, PropertyComment, nil, c)
	return c, nil
}

// EditComment updates a comment.
func (m *Manager) EditComment(ctx context.Context, c Comment) error {
	if err := validate(c); err != nil {
		return err
	}
	old, err := m.store.Comment(ctx, c.ID)
	if err != nil {
		return errors.Wrap(err, "edit comment")
	}
	if err := m.store.EditComment(ctx, c); err != nil {
		return errors.Wrap(err, "edit comment")
	}
	// only body and time are editable; announce the stored comment
	updated, err := m.store.Comment(ctx, c.ID)
	if err != nil {
		return errors.Wrap(err, "edit comment")
	}
	m.publish(ctx, PropertyComment, old, updated)
	return nil
}

// RemoveComment deletes a comment.
func (m *Manager) RemoveComment(ctx context.Context, id int) error {
	old, err := m.store.Comment(ctx, id)
	if err != nil {
		return errors.Wrap(err, "remove comment")
	}
	if err := m.store.RemoveComment(ctx, id); err != nil {
		return errors.Wrap(err, "remove comment")
	}
	m.publish(ctx, PropertyComment, old, nil)
	return nil
}

// Comment returns one comment.
func (m *Manager) Comment(ctx context.Context, id int) (Comment, error) {
	return m.store.Comment(ctx, id)
}

// Comments returns the comments of a post.
func (m *Manager) Comments(ctx context.Context, postID int) ([]Comment, error) {
	return m.store.Comments(ctx, postID)
}

// AddDog creates a dog profile.
func (m *Manager) AddDog(ctx context.Context, d Dog) (Dog, error) {
	if err := validate(d); err != nil {
		return Dog{}, err
	}
	d, err := m.store.AddDog(ctx, d)
	if err != nil {
		return Dog{}, errors.Wrap(err, "add dog")
	}
	m.publish(ctx, PropertyDog, nil, d)
	return d, nil
}

// EditDog updates a dog profile.
func (m *Manager) EditDog(ctx context.Context, d Dog) error {
	if err := validate(d); err != nil {
		return err
	}
	old, err := m.store.Dog(ctx, d.ID)
	if err != nil {
		return errors.Wrap(err, "edit dog")
	}
	if err := m.store.EditDog(ctx, d); err != nil {
		return errors.Wrap(err, "edit dog")
	}
	m.publish(ctx, PropertyDog, old, d)
	return nil
}

// RemoveDog deletes a dog profile.
func (m *Manager) RemoveDog(ctx context.Context, id int) error {
	old, err := m.store.Dog(ctx, id)
	if err != nil {
		return errors.Wrap(err, "remove dog")
	}
	if err := m.store.RemoveDog(ctx, id); err != nil {
		return errors.Wrap(err, "remove dog")
	}
	m.publish(ctx, PropertyDog, old, nil)
	return nil
}

// Dog returns one dog profile.
func (m *Manager) Dog(ctx context.Context, id int) (Dog, error) {
	return m.store.Dog(ctx, id)
}

// Dogs returns the dogs of owner, or all dogs when owner is empty.
func (m *Manager) Dogs(ctx context.Context, owner string) ([]Dog, error) {
	return m.store.Dogs(ctx, owner)
}

// Like records a like and announces it carrying the target's new count.
func (m *Manager) Like(ctx context.Context, l Like) (int, error) {
	if err := validate(l); err != nil {
		return 0, err
	}
	likes, err := m.store.AddLike(ctx, l)
	if err != nil {
		return 0, errors.Wrap(err, "like")
	}
	l.Likes = likes
	m.publish(ctx, PropertyLike, nil, l)
	return likes, nil
}

// Likes returns the recorded likes of a kind.
func (m *Manager) Likes(ctx context.Context, kind LikeKind) ([]Like, error) {
	return m.store.Likes(ctx, kind)
}
