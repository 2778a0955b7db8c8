package mailer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailgun_Send(t *testing.T) {
	var path, to, subject, html string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		to, subject, html = r.FormValue("to"), r.FormValue("subject"), r.FormValue("html")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"<1@mg.example.com>","message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	m := NewMailgun("mg.example.com", "key-test", "Contacts <no-reply@mg.example.com>", srv.URL+"/v3")
	require.NoError(t, m.Send(context.Background(), "ann@example.com", "Confirm", "text body", "<p>html</p>"))

	assert.Equal(t, "/v3/mg.example.com/messages", path)
	assert.Equal(t, "ann@example.com", to)
	assert.Equal(t, "Confirm", subject)
	assert.Equal(t, "<p>html</p>", html)
}

func TestMailgun_SendErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		permanent bool
	}{
		{"unauthorized", http.StatusUnauthorized, true},
		{"bad request", http.StatusBadRequest, true},
		{"throttled", http.StatusTooManyRequests, false},
		{"server error", http.StatusInternalServerError, false},
		{"unavailable", http.StatusServiceUnavailable, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"message":"nope"}`, tt.status)
			}))
			defer srv.Close()

			m := NewMailgun("mg.example.com", "key-test", "no-reply@mg.example.com", srv.URL+"/v3")
			err := m.Send(context.Background(), "ann@example.com", "s", "t", "")
			require.ErrorContains(t, err, "mailgun send")
			assert.Equal(t, tt.permanent, errors.Is(err, ErrBadJob))
		})
	}
}

func TestMailgun_EmptyRecipientIsPermanent(t *testing.T) {
	m := NewMailgun("mg.example.com", "key-test", "no-reply@mg.example.com", "http://127.0.0.1:1/v3")
	assert.ErrorIs(t, m.Send(context.Background(), "", "s", "t", ""), ErrBadJob)
}

func TestDispatcher_RejectedSendIsDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"to parameter is not a valid address"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	d := NewDispatcher(NewMailgun("mg.example.com", "key-test", "no-reply@mg.example.com", srv.URL+"/v3"))
	body := []byte(`{"to":"not-an-address","subject":"hi","text":"body"}`)
	assert.ErrorIs(t, d.Handle(context.Background(), body), ErrBadJob)
}
