package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientPostEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(Response{Success: false, Error: "invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(Response{
			Success: true,
			Data:    json.RawMessage(`{"user":{"id":"u-1","name":"Maria","email":"m@example.com"},"token":"tok"}`),
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	ctx := context.Background()

	sess, err := SignIn(ctx, c, "m@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u-1", sess.User.ID)
	assert.Equal(t, "tok", sess.Token)

	_, err = SignIn(ctx, c, "m@example.com", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestSignUpRejectsIncompletePayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{
			Success: true,
			Data:    json.RawMessage(`{"user":{"id":"","name":"","email":""},"token":""}`),
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	_, err := SignUp(context.Background(), c, "Maria", "m@example.com", "secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing user or token")
}

func TestClientPostTransportError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond, nil)
	_, err := c.Post(context.Background(), "/auth/login", map[string]string{})
	require.Error(t, err)
}

func TestClientPostNonJSONBodyInError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>gateway error</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	_, err := c.Post(context.Background(), "/auth/login", map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway error")
	assert.Contains(t, err.Error(), "502")
}
