package server

import (
	"context"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/teamlint/puppr/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultReadLimit = 1 << 20

// Response is the body of every API reply.
type Response struct {
	Result jsoniter.RawMessage `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
}

type operation func(ctx context.Context, m *model.Manager, body []byte) (interface{}, error)

// call decodes the request body into T before running fn.
func call[T any](fn func(ctx context.Context, m *model.Manager, in T) (interface{}, error)) operation {
	return func(ctx context.Context, m *model.Manager, body []byte) (interface{}, error) {
		var in T
		if len(body) > 0 {
			if err := json.Unmarshal(body, &in); err != nil {
				return nil, errors.Wrap(model.ErrInvalid, err.Error())
			}
		}
		return fn(ctx, m, in)
	}
}

func done(err error) (interface{}, error) {
	return nil, err
}

var operations = map[string]map[string]operation{
	"user": {
		"add": call(func(ctx context.Context, m *model.Manager, u model.User) (interface{}, error) {
			return done(m.AddUser(ctx, u))
		}),
		"edit": call(func(ctx context.Context, m *model.Manager, u model.User) (interface{}, error) {
			return done(m.EditUser(ctx, u))
		}),
		"remove": call(func(ctx context.Context, m *model.Manager, q model.Query) (interface{}, error) {
			return done(m.RemoveUser(ctx, q.Handle))
		}),
		"bio": call(func(ctx context.Context, m *model.Manager, q model.Query) (interface{}, error) {
			return done(m.SetBio(ctx, q.Handle, q.Bio))
		}),
		"get": call(func(ctx context.Context, m *model.Manager, q model.Query) (interface{}, error) {
			return m.User(ctx, q.Handle)
		}),
		"list": call(func(ctx context.Context, m *model.Manager, _ model.Query) (interface{}, error) {
			return m.Users(ctx)
		}),
	},
	"post": {
		"add": call(func(ctx context.Context, m *model.Manager, p model.Post) (interface{}, error) {
			return m.AddPost(ctx, p)
		}),
		"edit": call(func(ctx context.Context, m *model.Manager, p model.Post) (interface{}, error) {
			return done(m.EditPost(ctx, p))
		}),
		"remove": call(func(ctx context.Context, m *model.Manager, q model.Query) (interface{}, error) {
			return done(m.RemovePost(ctx, q.ID))
		}),
		"get": call(func(ctx context.Context, m *model.Manager, q model.Query) (interface{}, error) {
			return m.Post(ctx, q.ID)
		}),
		"list": call(func(ctx context.Context, m *model.Manager, q model.Query) (interface{}, error) {
			return m.Posts(ctx, q.Handle)
		}),
	},
	"comment": {
		"add": call(func(ctx context.Context, m *model.Manager, c model.Comment) (interface{}, error) {
			return m.AddComment(ctx, c)
		}),
		"edit": call(func(ctx context.Context, m *model.Manager, c model.Comment) (interface{}, error) {
			return done(m.EditComment(ctx, c))
		}),
		"remove": call(func(ctx context.Context, m *model.Manager, q model.Query) (interface{}, error) {
			return done(m.RemoveComment(ctx, q.ID))
		}),
		"get": call(func(ctx context.Context, m *model.Manager, q model.Query) (interface{}, error) {
			return m.Comment(ctx, q.ID)
		}),
		"list": call(func(ctx context.Context, m *model.Manager, q model.Query) (interface{}, error) {
			return m.Comments(ctx, q.PostID)
		}),
	},
	"dog": {
		"add": call(func(ctx context.Context, m *model.Manager, d model.Dog) (interface{}, error) {
			return m.AddDog(ctx, d)
		}),
		"edit": call(func(ctx context.Context, m *model.Manager, d model.Dog) (interface{}, error) {
			return done(m.EditDog(ctx, d))
		}),
		"remove": call(func(ctx context.Context, m *model.Manager, q model.Query) (interface{}, error) {
			return done(m.RemoveDog(ctx, q.ID))
		}),
		"get": call(func(ctx context.Context, m *model.Manager, q model.Query) (interface{}, error) {
			return m.Dog(ctx, q.ID)
		}),
		"list": call(func(ctx context.Context, m *model.Manager, q model.Query) (interface{}, error) {
			return m.Dogs(ctx, q.Owner)
		}),
	},
	"like": {
		"add": call(func(ctx context.Context, m *model.Manager, l model.Like) (interface{}, error) {
			return m.Like(ctx, l)
		}),
		"list": call(func(ctx context.Context, m *model.Manager, q model.Query) (interface{}, error) {
			return m.Likes(ctx, q.Kind)
		}),
	},
}

// StatusOf maps a business error to an HTTP status.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, model.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrExists), errors.Is(err, model.ErrAlreadyLiked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) serveAPI(w http.ResponseWriter, r *http.Request) {
	entity, action := r.PathValue("entity"), r.PathValue("action")
	logger := logrus.WithFields(logrus.Fields{"entity": entity, "action": action})

	op, ok := operations[entity][action]
	if !ok {
		writeResponse(w, http.StatusNotFound, Response{Error: "unknown operation " + entity + "/" + action})
		return
	}
	limit := s.config.Server.ReadLimit
	if limit <= 0 {
		limit = defaultReadLimit
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, limit))
	if err != nil {
		writeResponse(w, http.StatusBadRequest, Response{Error: err.Error()})
		return
	}

	result, err := op(r.Context(), s.manager, body)
	if err != nil {
		status := StatusOf(err)
		if status == http.StatusInternalServerError {
			logger.WithError(err).Errorln("api call failed")
		} else {
			logger.WithError(err).Debugln("api call rejected")
		}
		writeResponse(w, status, Response{Error: err.Error()})
		return
	}

	var resp Response
	if result != nil {
		if resp.Result, err = json.Marshal(result); err != nil {
			logger.WithError(err).Errorln("marshal result")
			writeResponse(w, http.StatusInternalServerError, Response{Error: err.Error()})
			return
		}
	}
	writeResponse(w, http.StatusOK, resp)
}

func writeResponse(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logrus.WithError(err).Debugln("write response")
	}
}
