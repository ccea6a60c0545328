package instagram

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "igclient/pkg/errors"
)

// broadcastServer mimics the direct-message broadcast endpoints and
// records the multipart fields of each request.
type broadcastServer struct {
	server *httptest.Server

	mu         sync.Mutex
	boundaries []string
	fields     []map[string]string
	paths      []string
}

func newBroadcastServer() *broadcastServer {
	s := &broadcastServer{}

	capture := func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.paths = append(s.paths, r.URL.Path)
		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err == nil {
			s.boundaries = append(s.boundaries, params["boundary"])
		}

		fields := make(map[string]string)
		reader := multipart.NewReader(r.Body, params["boundary"])
		for {
			part, err := reader.NextPart()
			if err != nil {
				break
			}
			value, _ := io.ReadAll(part)
			fields[part.FormName()] = string(value)
		}
		s.fields = append(s.fields, fields)
		fmt.Fprint(w, `{"status":"ok"}`)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/direct_v2/threads/broadcast/text/", capture)
	mux.HandleFunc("/api/v1/direct_v2/threads/broadcast/media_share/", capture)

	s.server = httptest.NewServer(mux)
	return s
}

func TestDirectMessage(t *testing.T) {
	server := newBroadcastServer()
	defer server.server.Close()

	client := newTestClient(t, server.server.URL)
	client.loggedIn = true

	res, err := client.DirectMessage(context.Background(), []string{"123", "456"}, "hello there")
	require.NoError(t, err)
	assert.True(t, res.OK)

	require.Len(t, server.fields, 1)
	fields := server.fields[0]
	assert.Equal(t, `[["123"",""456"]]`, fields["recipient_users"])
	assert.Equal(t, client.UUID(), fields["client_context"], "client context must be the instance uuid")
	assert.Equal(t, `["0"]`, fields["thread"])
	assert.Equal(t, "hello there", fields["text"])
	assert.Equal(t, client.UUID(), server.boundaries[0], "multipart boundary must be the instance uuid")
}

func TestDirectMessageClientContextIsStable(t *testing.T) {
	server := newBroadcastServer()
	defer server.server.Close()

	client := newTestClient(t, server.server.URL)
	client.loggedIn = true

	for i := 0; i < 2; i++ {
		_, err := client.DirectMessage(context.Background(), []string{"123"}, "again")
		require.NoError(t, err)
	}

	require.Len(t, server.fields, 2)
	assert.Equal(t, server.fields[0]["client_context"], server.fields[1]["client_context"],
		"client context must not rotate between calls")
	assert.Equal(t, client.UUID(), server.fields[0]["client_context"])
}

func TestDirectShare(t *testing.T) {
	server := newBroadcastServer()
	defer server.server.Close()

	client := newTestClient(t, server.server.URL)
	client.loggedIn = true

	res, err := client.DirectShare(context.Background(), "1234567890_123", []string{"789"}, "look at this")
	require.NoError(t, err)
	assert.True(t, res.OK)

	require.Len(t, server.fields, 1)
	fields := server.fields[0]
	assert.Equal(t, "1234567890_123", fields["media_id"])
	assert.Equal(t, `[["789"]]`, fields["recipient_users"])
	assert.Equal(t, client.UUID(), fields["client_context"])
	assert.Equal(t, "look at this", fields["text"])
	assert.Equal(t, "/api/v1/direct_v2/threads/broadcast/media_share/", server.paths[0])
}

func TestDirectMessageValidation(t *testing.T) {
	server := newBroadcastServer()
	defer server.server.Close()

	client := newTestClient(t, server.server.URL)
	client.loggedIn = true

	_, err := client.DirectMessage(context.Background(), nil, "hello")
	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errs.ErrorTypeValidation, apiErr.Type)

	_, err = client.DirectShare(context.Background(), "", []string{"123"}, "")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errs.ErrorTypeValidation, apiErr.Type)

	_, err = client.DirectShare(context.Background(), "1234_1", nil, "")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errs.ErrorTypeValidation, apiErr.Type)

	assert.Empty(t, server.fields, "validation failures must not reach the network")
}
