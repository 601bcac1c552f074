package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oquants/tradewatch/pkg/types"
)

func TestWebhookSink_Send(t *testing.T) {
	var received types.Notification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL)
	n := types.Notification{
		Level:     types.NotifyLevelInfo,
		Source:    "gateway",
		Message:   "tradewatch gateway: success after 1 attempt(s)",
		Timestamp: time.Now(),
	}
	require.NoError(t, sink.Send(n))
	assert.Equal(t, n.Message, received.Message)
	assert.Equal(t, n.Level, received.Level)
}

func TestWebhookSink_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL)
	err := sink.Send(types.Notification{Message: "x"})
	assert.ErrorContains(t, err, "status 500")
}

func TestWebhookSink_Unreachable(t *testing.T) {
	sink := NewWebhookSink("http://127.0.0.1:1/nothing")
	err := sink.Send(types.Notification{Message: "x"})
	assert.Error(t, err)
}
