package instagram

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "igclient/pkg/errors"
	"igclient/pkg/media"
)

// stubInspector returns fixed video metadata without shelling out.
type stubInspector struct {
	info media.VideoInfo
	err  error
}

func (s *stubInspector) Probe(ctx context.Context, path string) (media.VideoInfo, error) {
	return s.info, s.err
}

// writeTestPhoto writes a decodable PNG and returns its path.
func writeTestPhoto(t *testing.T, name string, width, height int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, width, height))))
	return path
}

func writeTestVideo(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		total int
		sizes []int
	}{
		{4, []int{1, 1, 1, 1}},
		{8, []int{2, 2, 2, 2}},
		{10, []int{2, 2, 2, 4}},
		{1000, []int{250, 250, 250, 250}},
		{1003, []int{250, 250, 250, 253}},
	}

	for _, tt := range tests {
		ranges, err := splitChunks(tt.total)
		require.NoError(t, err, "total=%d", tt.total)
		require.Len(t, ranges, 4)

		covered := 0
		for i, r := range ranges {
			assert.Equal(t, tt.sizes[i], r.size(), "total=%d chunk=%d", tt.total, i)
			assert.Equal(t, covered, r.start, "chunks must be contiguous")
			covered = r.end
		}
		assert.Equal(t, tt.total, covered, "chunks must cover the whole video")
	}
}

func TestSplitChunksRejectsTinyVideos(t *testing.T) {
	for _, total := range []int{0, 1, 3} {
		_, err := splitChunks(total)
		require.Error(t, err, "total=%d", total)

		var apiErr *errs.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, errs.ErrorTypeValidation, apiErr.Type)
	}
}

func TestContentRangeRendering(t *testing.T) {
	ranges, err := splitChunks(10)
	require.NoError(t, err)

	expected := []string{
		"bytes 0-1/10",
		"bytes 2-3/10",
		"bytes 4-5/10",
		"bytes 6-9/10",
	}
	for i, r := range ranges {
		assert.Equal(t, expected[i], r.contentRange())
	}
}

func TestValidateAlbumSizeBounds(t *testing.T) {
	photo := func(n int) []AlbumItem {
		items := make([]AlbumItem, n)
		for i := range items {
			items[i] = AlbumItem{Path: fmt.Sprintf("photo%d.jpg", i)}
		}
		return items
	}

	for _, n := range []int{0, 1, 11, 20} {
		_, err := validateAlbum(photo(n))
		require.Error(t, err, "n=%d", n)

		var apiErr *errs.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, errs.ErrorTypeValidation, apiErr.Type)
	}

	for _, n := range []int{2, 10} {
		_, err := validateAlbum(photo(n))
		assert.NoError(t, err, "n=%d is inside the documented bounds", n)
	}
}

func TestValidateAlbumExtensions(t *testing.T) {
	_, err := validateAlbum([]AlbumItem{
		{Path: "a.jpg"},
		{Path: "notes.txt"},
	})
	require.Error(t, err)

	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errs.ErrorTypeUnsupportedMedia, apiErr.Type)
}

func TestValidateAlbumVideoNeedsThumbnail(t *testing.T) {
	_, err := validateAlbum([]AlbumItem{
		{Path: "a.jpg"},
		{Path: "clip.mp4"},
	})
	require.Error(t, err)

	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errs.ErrorTypeValidation, apiErr.Type)

	entries, err := validateAlbum([]AlbumItem{
		{Path: "a.jpg"},
		{Path: "clip.mp4", Thumbnail: "clip.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, media.KindPhoto, entries[0].kind)
	assert.Equal(t, media.KindVideo, entries[1].kind)
}

func TestValidateUsertags(t *testing.T) {
	tests := []struct {
		name string
		tag  Usertag
		ok   bool
	}{
		{"valid center", Usertag{Position: [2]float64{0.5, 0.5}, UserID: "123"}, true},
		{"boundary zero", Usertag{Position: [2]float64{0, 0}, UserID: "0"}, true},
		{"boundary one", Usertag{Position: [2]float64{1, 1}, UserID: "999"}, true},
		{"x too large", Usertag{Position: [2]float64{1.1, 0.5}, UserID: "123"}, false},
		{"y negative", Usertag{Position: [2]float64{0.5, -0.1}, UserID: "123"}, false},
		{"non-numeric id", Usertag{Position: [2]float64{0.5, 0.5}, UserID: "abc"}, false},
		{"negative id", Usertag{Position: [2]float64{0.5, 0.5}, UserID: "-1"}, false},
		{"empty id", Usertag{Position: [2]float64{0.5, 0.5}, UserID: ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateUsertags([]Usertag{tt.tag})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				var apiErr *errs.Error
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, errs.ErrorTypeValidation, apiErr.Type)
			}
		})
	}
}

func TestUploadAlbumValidatesBeforeNetwork(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	client.loggedIn = true

	invalid := [][]AlbumItem{
		{{Path: "only-one.jpg"}},
		{{Path: "a.jpg"}, {Path: "b.txt"}},
		{{Path: "a.jpg"}, {Path: "clip.mp4"}},
		{{Path: "a.jpg", Usertags: []Usertag{{Position: [2]float64{2, 0}, UserID: "1"}}}, {Path: "b.jpg"}},
	}

	for _, items := range invalid {
		_, err := client.UploadAlbum(context.Background(), items, "caption")
		require.Error(t, err)
	}
	assert.Zero(t, calls, "validation failures must not touch the network")
}

// uploadServer mimics the photo and video upload endpoints.
type uploadServer struct {
	server *httptest.Server

	mu             sync.Mutex
	photoUploads   []string // upload_id field of each multipart upload
	photoBoundary  string
	configureBody  string
	sidecarBody    string
	chunkRanges    []string
	chunkSessions  []string
	chunkJobs      []string
	exposeCalls    int
	videoInitCalls int
}

func newUploadServer() *uploadServer {
	s := &uploadServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/upload/photo/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err == nil {
			s.photoBoundary = params["boundary"]
		}
		reader := multipart.NewReader(r.Body, params["boundary"])
		for {
			part, err := reader.NextPart()
			if err != nil {
				break
			}
			if part.FormName() == "upload_id" {
				value, _ := io.ReadAll(part)
				s.photoUploads = append(s.photoUploads, string(value))
			}
		}
		fmt.Fprint(w, `{"status":"ok"}`)
	})
	mux.HandleFunc("/api/v1/upload/video/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.videoInitCalls++
		s.mu.Unlock()
		fmt.Fprintf(w, `{"status":"ok","video_upload_urls":[
			{"url":"%[1]s/rupload/0","job":"job0"},
			{"url":"%[1]s/rupload/1","job":"job1"},
			{"url":"%[1]s/rupload/2","job":"job2"},
			{"url":"%[1]s/rupload/3","job":"job3"}]}`, s.server.URL)
	})
	mux.HandleFunc("/rupload/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.chunkRanges = append(s.chunkRanges, r.Header.Get("Content-Range"))
		s.chunkSessions = append(s.chunkSessions, r.Header.Get("Session-ID"))
		s.chunkJobs = append(s.chunkJobs, r.Header.Get("job"))
		s.mu.Unlock()
		fmt.Fprint(w, `{"status":"ok"}`)
	})
	mux.HandleFunc("/api/v1/media/configure/", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.configureBody = string(body)
		s.mu.Unlock()
		fmt.Fprint(w, `{"status":"ok","media":{"pk":1}}`)
	})
	mux.HandleFunc("/api/v1/media/configure_sidecar/", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.sidecarBody = string(body)
		s.mu.Unlock()
		fmt.Fprint(w, `{"status":"ok"}`)
	})
	mux.HandleFunc("/api/v1/qe/expose/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.exposeCalls++
		s.mu.Unlock()
		fmt.Fprint(w, `{"status":"ok"}`)
	})

	s.server = httptest.NewServer(mux)
	return s
}

// decodeSignedPayload strips the signed-body envelope from a request
// body and returns the inner JSON.
func decodeSignedPayload(t *testing.T, body string) string {
	t.Helper()
	require.True(t, VerifySignature(body), "configure bodies must be signed")
	payload, err := url.QueryUnescape(body[strings.Index(body, ".")+1:])
	require.NoError(t, err)
	return payload
}

func TestUploadPhoto(t *testing.T) {
	server := newUploadServer()
	defer server.server.Close()

	client := newTestClient(t, server.server.URL)
	client.loggedIn = true

	photo := writeTestPhoto(t, "beach.png", 720, 1280)
	res, err := client.UploadPhoto(context.Background(), photo, "sunset", nil)
	require.NoError(t, err)
	assert.True(t, res.OK)

	require.Len(t, server.photoUploads, 1)
	assert.Equal(t, client.UUID(), server.photoBoundary, "multipart boundary must be the instance uuid")

	payload := decodeSignedPayload(t, server.configureBody)
	assert.Contains(t, payload, `"upload_id":"`+server.photoUploads[0]+`"`)
	assert.Contains(t, payload, `"caption":"sunset"`)
	assert.Contains(t, payload, `"crop_original_size":[720,1280]`)
	assert.Equal(t, 1, server.exposeCalls)
}

func TestUploadPhotoMissingFile(t *testing.T) {
	server := newUploadServer()
	defer server.server.Close()

	client := newTestClient(t, server.server.URL)
	client.loggedIn = true

	_, err := client.UploadPhoto(context.Background(), "/nonexistent/photo.jpg", "", nil)
	require.Error(t, err)

	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errs.ErrorTypeValidation, apiErr.Type)
	assert.Empty(t, server.photoUploads)
}

func TestUploadVideo(t *testing.T) {
	server := newUploadServer()
	defer server.server.Close()

	client := newTestClient(t, server.server.URL)
	client.loggedIn = true
	client.SetVideoInspector(&stubInspector{info: media.VideoInfo{Duration: 12.5, Width: 720, Height: 1280}})

	video := writeTestVideo(t, "clip.mp4", 10)
	thumb := writeTestPhoto(t, "thumb.png", 720, 1280)

	res, err := client.UploadVideo(context.Background(), video, thumb, "new clip", nil)
	require.NoError(t, err)
	assert.True(t, res.OK)

	assert.Equal(t, 1, server.videoInitCalls)
	assert.Equal(t, []string{
		"bytes 0-1/10",
		"bytes 2-3/10",
		"bytes 4-5/10",
		"bytes 6-9/10",
	}, server.chunkRanges)
	for _, job := range server.chunkJobs {
		assert.Equal(t, "job3", job, "chunks go to the fourth assigned url's job")
	}
	require.Len(t, server.photoUploads, 1, "thumbnail goes through the photo pipeline")

	// All chunks share the video's upload id as session
	for _, sess := range server.chunkSessions {
		assert.Equal(t, server.chunkSessions[0], sess)
	}

	payload := decodeSignedPayload(t, server.configureBody)
	assert.Contains(t, payload, `"length":12.5`)
	assert.Contains(t, payload, `"source_width":720`)
	assert.Contains(t, payload, `"caption":"new clip"`)
}

func TestUploadVideoProbeFailure(t *testing.T) {
	server := newUploadServer()
	defer server.server.Close()

	client := newTestClient(t, server.server.URL)
	client.loggedIn = true
	client.SetVideoInspector(&stubInspector{err: fmt.Errorf("ffprobe not found")})

	video := writeTestVideo(t, "clip.mp4", 10)
	thumb := writeTestPhoto(t, "thumb.png", 8, 8)

	_, err := client.UploadVideo(context.Background(), video, thumb, "", nil)
	require.Error(t, err)

	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errs.ErrorTypeValidation, apiErr.Type)
}

func TestUploadAlbum(t *testing.T) {
	server := newUploadServer()
	defer server.server.Close()

	client := newTestClient(t, server.server.URL)
	client.loggedIn = true
	client.SetVideoInspector(&stubInspector{info: media.VideoInfo{Duration: 8.0, Width: 640, Height: 640}})

	photoA := writeTestPhoto(t, "a.png", 640, 640)
	photoB := writeTestPhoto(t, "b.png", 640, 640)

	items := []AlbumItem{
		{Path: photoA, Usertags: []Usertag{{Position: [2]float64{0.5, 0.5}, UserID: "123"}}},
		{Path: photoB},
	}

	res, err := client.UploadAlbum(context.Background(), items, "holiday")
	require.NoError(t, err)
	assert.True(t, res.OK)

	require.Len(t, server.photoUploads, 2)

	payload := decodeSignedPayload(t, server.sidecarBody)
	assert.Contains(t, payload, `"caption":"holiday"`)
	assert.Contains(t, payload, `"children_metadata"`)
	assert.Contains(t, payload, `"IGNormalFilter"`)
	assert.Contains(t, payload, `"usertags"`)
	for _, id := range server.photoUploads {
		assert.Contains(t, payload, id, "every child upload id appears in children_metadata")
	}
}
