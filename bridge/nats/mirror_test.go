package nats

import (
	"context"
	"testing"

	"github.com/nats-io/stan.go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/teamlint/puppr/event"
	"github.com/teamlint/puppr/subject"
)

func TestMirror_Notify(t *testing.T) {
	evt := event.New("post", nil, map[string]interface{}{"id": 1})
	data, err := evt.MarshalJSON()
	require.NoError(t, err)

	tests := []struct {
		name      string
		publish   error
		wantErr   bool
		transport bool
	}{
		{name: "success"},
		{name: "closed connection", publish: stan.ErrConnectionClosed, wantErr: true, transport: true},
		{name: "timeout", publish: stan.ErrTimeout, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := new(connMock)
			conn.On("Publish", "puppr_post", data).Return(tt.publish)

			err := New(conn, "puppr").Notify(context.Background(), evt)
			if !tt.wantErr {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Equal(t, tt.transport, subject.IsTransport(err))
			}
			conn.AssertExpectations(t)
		})
	}
}

func TestMirror_EvictedWhenBrokerGone(t *testing.T) {
	conn := new(connMock)
	conn.On("Publish", "bio", mock.Anything).Return(errors.Wrap(stan.ErrBadConnection, "publish"))

	s := subject.New("server")
	_, err := s.Subscribe(New(conn, ""), "bio")
	require.NoError(t, err)

	require.NoError(t, s.Publish("bio", "a", "b"))
	assert.Equal(t, 0, s.Len())
}
