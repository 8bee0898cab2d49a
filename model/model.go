package model

import "time"

// Property names announced on the server subject.
const (
	PropertyUser    = "user"
	PropertyBio     = "bio"
	PropertyPost    = "post"
	PropertyComment = "comment"
	PropertyDog     = "dog"
	PropertyLike    = "like"
)

// User is a member of the network, identified by handle.
type User struct {
	Handle   string    `json:"handle" valid:"required"`
	Name     string    `json:"name"`
	Lastname string    `json:"lastname"`
	Image    []byte    `json:"image,omitempty"`
	Password string    `json:"-"`
	Email    string    `json:"email"`
	Birthday time.Time `json:"birthday"`
	Gender   string    `json:"gender"`
	Bio      string    `json:"bio"`
	UserType string    `json:"user_type"`
	Status   string    `json:"status"`
}

// Post is a picture post with a caption.
type Post struct {
	ID         int       `json:"id"`
	Handle     string    `json:"handle" valid:"required"`
	Image      []byte    `json:"image,omitempty"`
	Text       string    `json:"text"`
	Likes      int       `json:"likes"`
	TimePosted time.Time `json:"time_posted"`
}

// Comment is a reply on a post.
type Comment struct {
	ID         int       `json:"id"`
	PostID     int       `json:"post_id" valid:"required"`
	Handle     string    `json:"handle" valid:"required"`
	Body       string    `json:"body" valid:"required"`
	Likes      int       `json:"likes"`
	TimePosted time.Time `json:"time_posted"`
}

// Dog is a pet profile owned by a user.
type Dog struct {
	ID    int    `json:"id"`
	Name  string `json:"name" valid:"required"`
	Image []byte `json:"image,omitempty"`
	Info  string `json:"info"`
	Owner string `json:"owner" valid:"required"`
	Likes int    `json:"likes"`
}

// LikeKind is the kind of entity a like applies to.
type LikeKind string

// Like kinds.
const (
	LikePost    LikeKind = "post"
	LikeComment LikeKind = "comment"
	LikeDog     LikeKind = "dog"
)

// Like records that a user liked an entity.
type Like struct {
	Kind     LikeKind `json:"kind" valid:"required,in(post|comment|dog)"`
	TargetID int      `json:"target_id" valid:"required"`
	Handle   string   `json:"handle" valid:"required"`
	Likes    int      `json:"likes,omitempty"` // target's count after the like
}

// Query selects entities for get, list and remove calls.
type Query struct {
	Handle string   `json:"handle,omitempty"`
	ID     int      `json:"id,omitempty"`
	PostID int      `json:"post_id,omitempty"`
	Owner  string   `json:"owner,omitempty"`
	Bio    string   `json:"bio,omitempty"`
	Kind   LikeKind `json:"kind,omitempty"`
}
