package store

import (
	"context"
	"sort"
	"sync"

	"github.com/teamlint/puppr/model"
)

// MemStore keeps every entity in memory. It backs tests and the server's
// memory mode.
type MemStore struct {
	mu       sync.RWMutex
	users    map[string]model.User
	posts    map[int]model.Post
	comments map[int]model.Comment
	dogs     map[int]model.Dog
	likes    map[model.LikeKind]map[likeKey]struct{}
	order    map[model.LikeKind][]model.Like
	nextID   int
}

type likeKey struct {
	target int
	handle string
}

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		users:    make(map[string]model.User),
		posts:    make(map[int]model.Post),
		comments: make(map[int]model.Comment),
		dogs:     make(map[int]model.Dog),
		likes:    make(map[model.LikeKind]map[likeKey]struct{}),
		order:    make(map[model.LikeKind][]model.Like),
	}
}

func (s *MemStore) id() int {
	s.nextID++
	return s.nextID
}

func (s *MemStore) AddUser(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Handle]; ok {
		return model.ErrExists
	}
	s.users[u.Handle] = u
	return nil
}

func (s *MemStore) EditUser(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Handle]; !ok {
		return model.ErrNotFound
	}
	s.users[u.Handle] = u
	return nil
}

func (s *MemStore) RemoveUser(_ context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[handle]; !ok {
		return model.ErrNotFound
	}
	delete(s.users, handle)
	return nil
}

func (s *MemStore) SetBio(_ context.Context, handle, bio string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[handle]
	if !ok {
		return model.ErrNotFound
	}
	u.Bio = bio
	s.users[handle] = u
	return nil
}

func (s *MemStore) User(_ context.Context, handle string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[handle]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return u, nil
}

func (s *MemStore) Users(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Handle < users[j].Handle })
	return users, nil
}

func (s *MemStore) AddPost(_ context.Context, p model.Post) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	s.posts[p.ID] = p
	return p, nil
}

func (s *MemStore) EditPost(_ context.Context, p model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[p.ID]; !ok {
		return model.ErrNotFound
	}
	s.posts[p.ID] = p
	return nil
}

func (s *MemStore) RemovePost(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.posts, id)
	s.dropLikes(model.LikePost, id)
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
			s.dropLikes(model.LikeComment, cid)
		}
	}
	return nil
}

func (s *MemStore) Post(_ context.Context, id int) (model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return model.Post{}, model.ErrNotFound
	}
	return p, nil
}

func (s *MemStore) Posts(_ context.Context, handle string) ([]model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	posts := make([]model.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if handle == "" || p.Handle == handle {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts, nil
}

func (s *MemStore) AddComment(_ context.Context, c model.Comment) (model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[c.PostID]; !ok {
		return model.Comment{}, model.ErrNotFound
	}
	c.ID = s.id()
	s.comments[c.ID] = c
	return c, nil
}

func (s *MemStore) EditComment(_ context.Context, c model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.comments[c.ID]
	if !ok {
		return model.ErrNotFound
	}
	old.Body = c.Body
	old.TimePosted = c.TimePosted
	s.comments[c.ID] = old
	return nil
}

func (s *MemStore) RemoveComment(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.comments, id)
	s.dropLikes(model.LikeComment, id)
	return nil
}

func (s *MemStore) Comment(_ context.Context, id int) (model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return model.Comment{}, model.ErrNotFound
	}
	return c, nil
}

func (s *MemStore) Comments(_ context.Context, postID int) ([]model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comments := make([]model.Comment, 0)
	for _, c := range s.comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

func (s *MemStore) AddDog(_ context.Context, d model.Dog) (model.Dog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.id()
	s.dogs[d.ID] = d
	return d, nil
}

func (s *MemStore) EditDog(_ context.Context, d model.Dog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dogs[d.ID]; !ok {
		return model.ErrNotFound
	}
	s.dogs[d.ID] = d
	return nil
}

func (s *MemStore) RemoveDog(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dogs[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.dogs, id)
	s.dropLikes(model.LikeDog, id)
	return nil
}

func (s *MemStore) Dog(_ context.Context, id int) (model.Dog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.dogs[id]
	if !ok {
		return model.Dog{}, model.ErrNotFound
	}
	return d, nil
}

func (s *MemStore) Dogs(_ context.Context, owner string) ([]model.Dog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dogs := make([]model.Dog, 0, len(s.dogs))
	for _, d := range s.dogs {
		if owner == "" || d.Owner == owner {
			dogs = append(dogs, d)
		}
	}
	sort.Slice(dogs, func(i, j int) bool { return dogs[i].ID < dogs[j].ID })
	return dogs, nil
}

func (s *MemStore) AddLike(_ context.Context, l model.Like) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := likeKey{target: l.TargetID, handle: l.Handle}
	if _, ok := s.likes[l.Kind][key]; ok {
		return 0, model.ErrAlreadyLiked
	}

	var likes int
	switch l.Kind {
	case model.LikePost:
		p, ok := s.posts[l.TargetID]
		if !ok {
			return 0, model.ErrNotFound
		}
		p.Likes++
		s.posts[p.ID] = p
		likes = p.Likes
	case model.LikeComment:
		c, ok := s.comments[l.TargetID]
		if !ok {
			return 0, model.ErrNotFound
		}
		c.Likes++
		s.comments[c.ID] = c
		likes = c.Likes
	case model.LikeDog:
		d, ok := s.dogs[l.TargetID]
		if !ok {
			return 0, model.ErrNotFound
		}
		d.Likes++
		s.dogs[d.ID] = d
		likes = d.Likes
	default:
		return 0, model.ErrInvalid
	}

	if s.likes[l.Kind] == nil {
		s.likes[l.Kind] = make(map[likeKey]struct{})
	}
	s.likes[l.Kind][key] = struct{}{}
	s.order[l.Kind] = append(s.order[l.Kind], l)
	return likes, nil
}

// dropLikes forgets the likes of a removed target. Callers hold s.mu.
func (s *MemStore) dropLikes(kind model.LikeKind, target int) {
	for key := range s.likes[kind] {
		if key.target == target {
			delete(s.likes[kind], key)
		}
	}
	kept := s.order[kind][:0]
	for _, l := range s.order[kind] {
		if l.TargetID != target {
			kept = append(kept, l)
		}
	}
	s.order[kind] = kept
}

func (s *MemStore) Likes(_ context.Context, kind model.LikeKind) ([]model.Like, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	likes := make([]model.Like, len(s.order[kind]))
	copy(likes, s.order[kind])
	return likes, nil
}

func (s *MemStore) IsAlive() bool { return true }

func (s *MemStore) Close() error { return nil }
