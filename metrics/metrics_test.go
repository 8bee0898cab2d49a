package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamlint/puppr/event"
	"github.com/teamlint/puppr/subject"
)

func TestCollectorCountsSubjectTraffic(t *testing.T) {
	c := New()
	s := subject.New("server", subject.WithMetrics(c))

	ok := subject.Func(func(context.Context, event.Event) error { return nil })
	dead := subject.Func(func(context.Context, event.Event) error {
		return subject.NewTransportError("dead", errors.New("gone"))
	})
	broken := subject.Func(func(context.Context, event.Event) error { return errors.New("bug") })
	_, _ = s.Subscribe(ok)
	_, _ = s.Subscribe(dead)
	_, _ = s.Subscribe(broken, "post")

	require.NoError(t, s.Publish("post", nil, 1))
	require.NoError(t, s.Publish("post", nil, 2))
	require.NoError(t, s.Publish("dog", nil, 3))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.published.WithLabelValues("server", "post")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.published.WithLabelValues("server", "dog")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.delivered.WithLabelValues("server", "post")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.failed.WithLabelValues("server", "post")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.evicted.WithLabelValues("server")))
}

func TestCollectorGatewaysAndHandler(t *testing.T) {
	c := New()
	c.GatewayConnected()
	c.GatewayConnected()
	c.GatewayDisconnected()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.gateways))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "puppr_gateways_connected 1")
}
