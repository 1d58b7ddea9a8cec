package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPostsEmbed(t *testing.T) {
	got := make(chan WebhookPayload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var p WebhookPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		got <- p
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewDiscord(srv.URL)
	require.NoError(t, n.Send(context.Background(), ErrorEmbed("Analyze Images", errors.New("quota exceeded"), 502, "/api/analyze", "user-9")))

	p := <-got
	require.Len(t, p.Embeds, 1)
	e := p.Embeds[0]
	assert.Equal(t, "API Error: Analyze Images", e.Title)
	assert.Contains(t, e.Description, "quota exceeded")
	assert.Equal(t, ColorRed, e.Color)
	require.Len(t, e.Fields, 3)
	assert.Equal(t, "`user-9`", e.Fields[0].Value)
	assert.Equal(t, "502", e.Fields[1].Value)
	assert.NotEmpty(t, e.Timestamp)
}

func TestSendReportsFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid webhook token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewDiscord(srv.URL).Send(context.Background(), Embed{Title: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestNotifyIsAsync(t *testing.T) {
	hit := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit <- struct{}{}
	}))
	defer srv.Close()

	NewDiscord(srv.URL).Notify(Embed{Title: "async"})
	select {
	case <-hit:
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not called")
	}
}

func TestDisabledNotifierDropsMessages(t *testing.T) {
	var n *Notifier
	assert.False(t, n.Enabled())
	assert.NoError(t, n.Send(context.Background(), Embed{}))
	n.Notify(Embed{})

	assert.False(t, NewDiscord("").Enabled())
	assert.Len(t, ErrorEmbed("a", errors.New("b"), 500, "/p", "").Fields, 2)
}
