package instagram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "igclient/pkg/errors"
)

// loginServer mimics the API endpoints the login sequence touches.
type loginServer struct {
	server *httptest.Server

	mu            sync.Mutex
	failHeaders   bool
	failLogin     bool
	loginBody     string
	bootstrapHits map[string]int
}

func newLoginServer() *loginServer {
	s := &loginServer{bootstrapHits: make(map[string]int)}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/si/fetch_headers/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.failHeaders {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"status":"fail"}`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "prelogin-token", Path: "/"})
		fmt.Fprint(w, `{"status":"ok"}`)
	})
	mux.HandleFunc("/api/v1/accounts/login/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		body, _ := io.ReadAll(r.Body)
		s.loginBody = string(body)

		if s.failLogin {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"status":"fail","message":"bad password"}`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "postlogin-token", Path: "/"})
		fmt.Fprint(w, `{"status":"ok","logged_in_user":{"pk":4242,"username":"testuser"}}`)
	})
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.bootstrapHits[r.URL.Path]++
		s.mu.Unlock()
		fmt.Fprint(w, `{"status":"ok"}`)
	})

	s.server = httptest.NewServer(mux)
	return s
}

func TestLoginSuccess(t *testing.T) {
	server := newLoginServer()
	defer server.server.Close()

	client := newTestClient(t, server.server.URL)
	require.NoError(t, client.Login(context.Background()))

	assert.True(t, client.IsLoggedIn())
	assert.Equal(t, int64(4242), client.UserID())
	assert.Equal(t, fmt.Sprintf("4242_%s", client.UUID()), client.RankToken())
	assert.Equal(t, "postlogin-token", client.token, "the rotated csrf cookie must be picked up")
}

func TestLoginSendsSignedCredentials(t *testing.T) {
	server := newLoginServer()
	defer server.server.Close()

	client := newTestClient(t, server.server.URL)
	require.NoError(t, client.Login(context.Background()))

	require.True(t, VerifySignature(server.loginBody))

	rest := server.loginBody[strings.Index(server.loginBody, ".")+1:]
	payload, err := url.QueryUnescape(rest)
	require.NoError(t, err)
	assert.Contains(t, payload, `"username":"testuser"`)
	assert.Contains(t, payload, `"password":"testpass"`)
	assert.Contains(t, payload, `"_csrftoken":"prelogin-token"`)
	assert.Contains(t, payload, `"device_id":"`+client.DeviceID()+`"`)
	assert.Contains(t, payload, `"login_attempt_count":"0"`)
}

func TestLoginRunsBootstrapSequence(t *testing.T) {
	server := newLoginServer()
	defer server.server.Close()

	client := newTestClient(t, server.server.URL)
	require.NoError(t, client.Login(context.Background()))

	server.mu.Lock()
	defer server.mu.Unlock()
	for _, path := range []string{
		"/api/v1/qe/sync/",
		"/api/v1/friendships/autocomplete_user_list/",
		"/api/v1/feed/timeline/",
		"/api/v1/direct_v2/inbox/",
		"/api/v1/news/inbox/",
	} {
		assert.Equal(t, 1, server.bootstrapHits[path], "bootstrap must hit %s once", path)
	}
}

func TestLoginHeaderFetchFailureStaysAnonymous(t *testing.T) {
	server := newLoginServer()
	defer server.server.Close()
	server.failHeaders = true

	client := newTestClient(t, server.server.URL)
	err := client.Login(context.Background())
	require.Error(t, err)

	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errs.ErrorTypeLogin, apiErr.Type)

	assert.False(t, client.IsLoggedIn())
	assert.Zero(t, client.UserID())
	assert.Empty(t, client.RankToken())
}

func TestLoginRejectionStaysAnonymous(t *testing.T) {
	server := newLoginServer()
	defer server.server.Close()
	server.failLogin = true

	client := newTestClient(t, server.server.URL)
	err := client.Login(context.Background())
	require.Error(t, err)

	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errs.ErrorTypeLogin, apiErr.Type)
	assert.Equal(t, http.StatusBadRequest, apiErr.Code)

	assert.False(t, client.IsLoggedIn())
	assert.Empty(t, client.RankToken())

	server.mu.Lock()
	defer server.mu.Unlock()
	assert.Empty(t, server.bootstrapHits, "no bootstrap call after a rejected login")
}

func TestLoginIdempotent(t *testing.T) {
	server := newLoginServer()
	defer server.server.Close()

	client := newTestClient(t, server.server.URL)
	require.NoError(t, client.Login(context.Background()))
	require.NoError(t, client.Login(context.Background()), "a second Login must be a no-op")
}

func TestLogoutResetsState(t *testing.T) {
	server := newLoginServer()
	defer server.server.Close()

	client := newTestClient(t, server.server.URL)
	require.NoError(t, client.Login(context.Background()))
	require.NoError(t, client.Logout(context.Background()))

	assert.False(t, client.IsLoggedIn())
	assert.Zero(t, client.UserID())
	assert.Empty(t, client.RankToken())

	// Authenticated calls fail fast again
	_, err := client.TimelineFeed(context.Background())
	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errs.ErrorTypeLoginRequired, apiErr.Type)
}
