package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/teamlint/puppr/config"
	"github.com/teamlint/puppr/model"
)

const (
	ErrMsgPostgresConnection = "db connection error"
	uniqueViolation          = "23505"
)

// ErrConnectionIsLost is reported by the server loop when IsAlive fails.
var ErrConnectionIsLost = errors.New("db connection to postgres is lost")

// schema creates the tables when missing.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		handle   VARCHAR(64) PRIMARY KEY,
		name     VARCHAR(128) NOT NULL DEFAULT '',
		lastname VARCHAR(128) NOT NULL DEFAULT '',
		imageurl BYTEA,
		password VARCHAR(256) NOT NULL DEFAULT '',
		email    VARCHAR(256) NOT NULL DEFAULT '',
		birthday DATE,
		gender   VARCHAR(32) NOT NULL DEFAULT '',
		bio      TEXT NOT NULL DEFAULT '',
		usertype VARCHAR(32) NOT NULL DEFAULT '',
		status   VARCHAR(32) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		post_id     SERIAL PRIMARY KEY,
		image_url   BYTEA,
		handle      VARCHAR(64) NOT NULL,
		likes       INTEGER NOT NULL DEFAULT 0,
		time_posted TIMESTAMP NOT NULL,
		text        TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		comment_id  SERIAL PRIMARY KEY,
		body        TEXT NOT NULL,
		handle      VARCHAR(64) NOT NULL,
		likes       INTEGER NOT NULL DEFAULT 0,
		time_posted TIMESTAMP NOT NULL,
		post_id     INTEGER NOT NULL REFERENCES posts(post_id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS dogs (
		dog_id    SERIAL PRIMARY KEY,
		dog_name  VARCHAR(128) NOT NULL,
		image_url BYTEA,
		info      TEXT NOT NULL DEFAULT '',
		dog_owner VARCHAR(64) NOT NULL,
		likes     INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS likes (
		handle  VARCHAR(64) NOT NULL,
		post_id INTEGER NOT NULL REFERENCES posts(post_id) ON DELETE CASCADE,
		PRIMARY KEY (handle, post_id)
	)`,
	`CREATE TABLE IF NOT EXISTS commentlikes (
		comment_id INTEGER NOT NULL REFERENCES comments(comment_id) ON DELETE CASCADE,
		handle     VARCHAR(64) NOT NULL,
		PRIMARY KEY (comment_id, handle)
	)`,
	`CREATE TABLE IF NOT EXISTS doglikes (
		handle VARCHAR(64) NOT NULL,
		dog_id INTEGER NOT NULL REFERENCES dogs(dog_id) ON DELETE CASCADE,
		PRIMARY KEY (handle, dog_id)
	)`,
}

// likeTables maps a like kind to its like table, target table and key column.
var likeTables = map[model.LikeKind]struct{ likes, target, key string }{
	model.LikePost:    {likes: "likes", target: "posts", key: "post_id"},
	model.LikeComment: {likes: "commentlikes", target: "comments", key: "comment_id"},
	model.LikeDog:     {likes: "doglikes", target: "dogs", key: "dog_id"},
}

// PgStore persists entities in PostgreSQL.
type PgStore struct {
	pool *pgx.ConnPool
}

// New returns a store on an open pool.
func New(pool *pgx.ConnPool) *PgStore {
	return &PgStore{pool: pool}
}

// Connect opens a connection pool to the configured database.
func Connect(cfg config.DatabaseCfg) (*PgStore, error) {
	maxConn := cfg.MaxConnections
	if maxConn <= 0 {
		maxConn = 5
	}
	pool, err := pgx.NewConnPool(pgx.ConnPoolConfig{
		ConnConfig: pgx.ConnConfig{
			LogLevel: pgx.LogLevelInfo,
			Logger:   pgxLogger{},
			Host:     cfg.Host,
			Port:     cfg.Port,
			Database: cfg.Name,
			User:     cfg.User,
			Password: cfg.Password,
		},
		MaxConnections: maxConn,
	})
	if err != nil {
		return nil, errors.Wrap(err, ErrMsgPostgresConnection)
	}
	return New(pool), nil
}

// EnsureSchema creates missing tables.
func (s *PgStore) EnsureSchema(ctx context.Context) error {
	for _, ddl := range schema {
		if _, err := s.pool.ExecEx(ctx, ddl, nil); err != nil {
			return errors.Wrap(err, "ensure schema")
		}
	}
	return nil
}

// translate maps driver errors to model errors.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrNotFound
	}
	var pgErr pgx.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errors.Wrap(model.ErrExists, pgErr.Message)
	}
	return err
}

// affected turns a zero-row command into ErrNotFound.
func affected(tag pgx.CommandTag, err error) error {
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *PgStore) AddUser(ctx context.Context, u model.User) error {
	_, err := s.pool.ExecEx(ctx,
		`INSERT INTO users (handle, name, lastname, imageurl, password, email, birthday, gender, bio, usertype, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, nil,
		u.Handle, u.Name, u.Lastname, u.Image, u.Password, u.Email, u.Birthday, u.Gender, u.Bio, u.UserType, u.Status)
	return translate(err)
}

func (s *PgStore) EditUser(ctx context.Context, u model.User) error {
	return affected(s.pool.ExecEx(ctx,
		`UPDATE users SET name=$2, lastname=$3, imageurl=$4, password=$5, email=$6, birthday=$7,
		 gender=$8, bio=$9, usertype=$10, status=$11 WHERE handle=$1`, nil,
		u.Handle, u.Name, u.Lastname, u.Image, u.Password, u.Email, u.Birthday, u.Gender, u.Bio, u.UserType, u.Status))
}

func (s *PgStore) RemoveUser(ctx context.Context, handle string) error {
	return affected(s.pool.ExecEx(ctx, `DELETE FROM users WHERE handle=$1`, nil, handle))
}

func (s *PgStore) SetBio(ctx context.Context, handle, bio string) error {
	return affected(s.pool.ExecEx(ctx, `UPDATE users SET bio=$1 WHERE handle=$2`, nil, bio, handle))
}

const userColumns = `handle, name, lastname, imageurl, password, email, COALESCE(birthday, 'epoch'::date), gender, bio, usertype, status`

func scanUser(row interface{ Scan(...interface{}) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.Handle, &u.Name, &u.Lastname, &u.Image, &u.Password, &u.Email,
		&u.Birthday, &u.Gender, &u.Bio, &u.UserType, &u.Status)
	return u, translate(err)
}

func (s *PgStore) User(ctx context.Context, handle string) (model.User, error) {
	return scanUser(s.pool.QueryRowEx(ctx, `SELECT `+userColumns+` FROM users WHERE handle=$1`, nil, handle))
}

func (s *PgStore) Users(ctx context.Context) ([]model.User, error) {
	rows, err := s.pool.QueryEx(ctx, `SELECT `+userColumns+` FROM users ORDER BY handle`, nil)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PgStore) AddPost(ctx context.Context, p model.Post) (model.Post, error) {
	err := s.pool.QueryRowEx(ctx,
		`INSERT INTO posts (image_url, handle, likes, time_posted, text) VALUES ($1, $2, $3, $4, $5)
		 RETURNING post_id`, nil,
		p.Image, p.Handle, p.Likes, p.TimePosted.UTC(), p.Text).Scan(&p.ID)
	return p, translate(err)
}

func (s *PgStore) EditPost(ctx context.Context, p model.Post) error {
	return affected(s.pool.ExecEx(ctx,
		`UPDATE posts SET image_url=$1, handle=$2, likes=$3, time_posted=$4, text=$5 WHERE post_id=$6`, nil,
		p.Image, p.Handle, p.Likes, p.TimePosted.UTC(), p.Text, p.ID))
}

func (s *PgStore) RemovePost(ctx context.Context, id int) error {
	return affected(s.pool.ExecEx(ctx, `DELETE FROM posts WHERE post_id=$1`, nil, id))
}

const postColumns = `post_id, image_url, handle, likes, time_posted, text`

func scanPost(row interface{ Scan(...interface{}) error }) (model.Post, error) {
	var p model.Post
	err := row.Scan(&p.ID, &p.Image, &p.Handle, &p.Likes, &p.TimePosted, &p.Text)
	return p, translate(err)
}

func (s *PgStore) Post(ctx context.Context, id int) (model.Post, error) {
	return scanPost(s.pool.QueryRowEx(ctx, `SELECT `+postColumns+` FROM posts WHERE post_id=$1`, nil, id))
}

func (s *PgStore) Posts(ctx context.Context, handle string) ([]model.Post, error) {
	rows, err := s.pool.QueryEx(ctx,
		`SELECT `+postColumns+` FROM posts WHERE $1 = '' OR handle = $1 ORDER BY post_id`, nil, handle)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *PgStore) AddComment(ctx context.Context, c model.Comment) (model.Comment, error) {
	err := s.pool.QueryRowEx(ctx,
		`INSERT INTO comments (body, handle, likes, time_posted, post_id) VALUES ($1, $2, $3, $4, $5)
		 RETURNING comment_id`, nil,
		c.Body, c.Handle, c.Likes, c.TimePosted.UTC(), c.PostID).Scan(&c.ID)
	return c, translate(err)
}

func (s *PgStore) EditComment(ctx context.Context, c model.Comment) error {
	return affected(s.pool.ExecEx(ctx,
		`UPDATE comments SET body=$1, time_posted=$2 WHERE comment_id=$3`, nil,
		c.Body, c.TimePosted.UTC(), c.ID))
}

func (s *PgStore) RemoveComment(ctx context.Context, id int) error {
	return affected(s.pool.ExecEx(ctx, `DELETE FROM comments WHERE comment_id=$1`, nil, id))
}

const commentColumns = `comment_id, post_id, handle, body, likes, time_posted`

func scanComment(row interface{ Scan(...interface{}) error }) (model.Comment, error) {
	var c model.Comment
	err := row.Scan(&c.ID, &c.PostID, &c.Handle, &c.Body, &c.Likes, &c.TimePosted)
	return c, translate(err)
}

func (s *PgStore) Comment(ctx context.Context, id int) (model.Comment, error) {
	return scanComment(s.pool.QueryRowEx(ctx, `SELECT `+commentColumns+` FROM comments WHERE comment_id=$1`, nil, id))
}

func (s *PgStore) Comments(ctx context.Context, postID int) ([]model.Comment, error) {
	rows, err := s.pool.QueryEx(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE post_id=$1 ORDER BY comment_id`, nil, postID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *PgStore) AddDog(ctx context.Context, d model.Dog) (model.Dog, error) {
	err := s.pool.QueryRowEx(ctx,
		`INSERT INTO dogs (dog_name, image_url, info, dog_owner, likes) VALUES ($1, $2, $3, $4, $5)
		 RETURNING dog_id`, nil,
		d.Name, d.Image, d.Info, d.Owner, d.Likes).Scan(&d.ID)
	return d, translate(err)
}

func (s *PgStore) EditDog(ctx context.Context, d model.Dog) error {
	return affected(s.pool.ExecEx(ctx,
		`UPDATE dogs SET dog_name=$1, image_url=$2, info=$3, dog_owner=$4, likes=$5 WHERE dog_id=$6`, nil,
		d.Name, d.Image, d.Info, d.Owner, d.Likes, d.ID))
}

func (s *PgStore) RemoveDog(ctx context.Context, id int) error {
	return affected(s.pool.ExecEx(ctx, `DELETE FROM dogs WHERE dog_id=$1`, nil, id))
}

const dogColumns = `dog_id, dog_name, image_url, info, dog_owner, likes`

func scanDog(row interface{ Scan(...interface{}) error }) (model.Dog, error) {
	var d model.Dog
	err := row.Scan(&d.ID, &d.Name, &d.Image, &d.Info, &d.Owner, &d.Likes)
	return d, translate(err)
}

func (s *PgStore) Dog(ctx context.Context, id int) (model.Dog, error) {
	return scanDog(s.pool.QueryRowEx(ctx, `SELECT `+dogColumns+` FROM dogs WHERE dog_id=$1`, nil, id))
}

func (s *PgStore) Dogs(ctx context.Context, owner string) ([]model.Dog, error) {
	rows, err := s.pool.QueryEx(ctx,
		`SELECT `+dogColumns+` FROM dogs WHERE $1 = '' OR dog_owner = $1 ORDER BY dog_id`, nil, owner)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	dogs := make([]model.Dog, 0)
	for rows.Next() {
		d, err := scanDog(rows)
		if err != nil {
			return nil, err
		}
		dogs = append(dogs, d)
	}
	return dogs, rows.Err()
}

// AddLike inserts the like row and bumps the target's counter in one
// transaction.
func (s *PgStore) AddLike(ctx context.Context, l model.Like) (int, error) {
	t, ok := likeTables[l.Kind]
	if !ok {
		return 0, model.ErrInvalid
	}
	tx, err := s.pool.BeginEx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin like")
	}
	defer tx.Rollback() // no-op after commit

	var likes int
	err = tx.QueryRowEx(ctx,
		fmt.Sprintf(`UPDATE %s SET likes = likes + 1 WHERE %s=$1 RETURNING likes`, t.target, t.key), nil,
		l.TargetID).Scan(&likes)
	if err != nil {
		return 0, translate(err)
	}
	if _, err = tx.ExecEx(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s, handle) VALUES ($1, $2)`, t.likes, t.key), nil,
		l.TargetID, l.Handle); err != nil {
		if errors.Is(translate(err), model.ErrExists) {
			return 0, model.ErrAlreadyLiked
		}
		return 0, translate(err)
	}
	if err = tx.CommitEx(ctx); err != nil {
		return 0, errors.Wrap(err, "commit like")
	}
	return likes, nil
}

func (s *PgStore) Likes(ctx context.Context, kind model.LikeKind) ([]model.Like, error) {
	t, ok := likeTables[kind]
	if !ok {
		return nil, model.ErrInvalid
	}
	rows, err := s.pool.QueryEx(ctx, fmt.Sprintf(`SELECT %s, handle FROM %s`, t.key, t.likes), nil)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	likes := make([]model.Like, 0)
	for rows.Next() {
		l := model.Like{Kind: kind}
		if err := rows.Scan(&l.TargetID, &l.Handle); err != nil {
			return nil, err
		}
		likes = append(likes, l)
	}
	return likes, rows.Err()
}

// IsAlive check database connection problems.
func (s *PgStore) IsAlive() bool {
	_, err := s.pool.Exec("SELECT 1")
	if err != nil {
		logrus.WithError(err).Debugln("postgres ping failed")
	}
	return err == nil
}

// Close database connection.
func (s *PgStore) Close() error {
	s.pool.Close()
	return nil
}

type pgxLogger struct{}

func (l pgxLogger) Log(level pgx.LogLevel, msg string, data map[string]interface{}) {
	entry := logrus.WithFields(logrus.Fields(data))
	switch level {
	case pgx.LogLevelError:
		entry.Errorln(msg)
	case pgx.LogLevelWarn:
		entry.Warnln(msg)
	default:
		entry.Debugln(msg)
	}
}
