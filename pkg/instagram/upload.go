package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	errs "igclient/pkg/errors"
	"igclient/pkg/logger"
	"igclient/pkg/media"
)

// UploadOptions tunes a single photo or video upload.
type UploadOptions struct {
	// UploadID overrides the generated correlator. Album children pass
	// their per-item seconds-precision id; standalone uploads leave it
	// empty and get a millisecond id.
	UploadID string
	// Sidecar marks the item as part of a multi-item album submission.
	Sidecar bool
}

// Usertag marks a user at a normalized position in a photo. Position
// coordinates lie in the closed unit interval; UserID must parse as a
// non-negative integer.
type Usertag struct {
	Position [2]float64 `json:"position"`
	UserID   string     `json:"user_id"`
}

// AlbumItem is one photo or video of an album submission. Videos need a
// Thumbnail; Usertags are only honored for photos.
type AlbumItem struct {
	Path      string
	Thumbnail string
	Usertags  []Usertag
}

// albumEntry is a validated album item with its routing decision and
// per-item upload correlator.
type albumEntry struct {
	item     AlbumItem
	kind     media.Kind
	uploadID string
	info     media.VideoInfo // populated for videos during upload
}

// UploadPhoto pushes a photo and runs its configure phase. On configure
// success the exposure beacon fires best-effort. A non-OK Result at
// either phase is returned as-is with no cleanup of partial server
// state.
func (c *Client) UploadPhoto(ctx context.Context, photoPath, caption string, opts *UploadOptions) (*Result, error) {
	if opts == nil {
		opts = &UploadOptions{}
	}
	uploadID := opts.UploadID
	if uploadID == "" {
		uploadID = UploadID()
	}

	photoData, err := os.ReadFile(photoPath)
	if err != nil {
		return nil, errs.Newf(errs.ErrorTypeValidation, "failed to read photo: %v", err)
	}

	fields := []formField{
		{"upload_id", uploadID},
		{"_uuid", c.uuid},
		{"_csrftoken", c.token},
		{"image_compression", imageCompression},
	}
	if opts.Sidecar {
		fields = append(fields, formField{"is_sidecar", "1"})
	}

	body, contentType, err := buildMultipart(c.uuid, fields, &filePart{
		fieldName:   "photo",
		fileName:    fmt.Sprintf("pending_media_%s.jpg", uploadID),
		contentType: "application/octet-stream",
		data:        photoData,
	})
	if err != nil {
		return nil, errs.Newf(errs.ErrorTypeUnknown, "failed to build upload body: %v", err)
	}

	res, err := c.postMultipart(ctx, epUploadPhoto, contentType, body, uploadHeaders())
	if err != nil {
		return nil, err
	}
	logger.LogUpload(uploadID, "photo", "upload", res.OK, nil)
	if !res.OK {
		return res, nil
	}

	cfgRes, err := c.configurePhoto(ctx, uploadID, photoPath, caption)
	if err != nil {
		logger.LogUpload(uploadID, "photo", "configure", false, err)
		return nil, err
	}
	logger.LogUpload(uploadID, "photo", "configure", cfgRes.OK, nil)
	if !cfgRes.OK {
		return cfgRes, nil
	}

	if _, err := c.Expose(ctx); err != nil {
		c.logger.WarnWithFields("exposure beacon failed", map[string]interface{}{
			"upload_id": uploadID,
			"error":     err.Error(),
		})
	}
	return cfgRes, nil
}

// configurePhoto binds the uploaded photo to its crop geometry and
// caption.
func (c *Client) configurePhoto(ctx context.Context, uploadID, photoPath, caption string) (*Result, error) {
	width, height, err := media.ImageSize(photoPath)
	if err != nil {
		return nil, errs.Newf(errs.ErrorTypeValidation, "failed to inspect photo: %v", err)
	}

	body, err := c.signedBody(map[string]interface{}{
		"media_folder": "Instagram",
		"source_type":  4,
		"caption":      caption,
		"upload_id":    uploadID,
		"device":       deviceSettings(),
		"edits": map[string]interface{}{
			"crop_original_size": []float64{float64(width), float64(height)},
			"crop_center":        []float64{0.0, 0.0},
			"crop_zoom":          1.0,
		},
		"extra": map[string]interface{}{
			"source_width":  width,
			"source_height": height,
		},
	})
	if err != nil {
		return nil, err
	}
	return c.post(ctx, epConfigure, body, false)
}

// UploadVideo runs the chunked video pipeline: initiation for the upload
// URL and job token, four sequential Content-Range chunks, the thumbnail
// through the photo pipeline under the same upload id, then the video
// configure phase and the exposure beacon.
func (c *Client) UploadVideo(ctx context.Context, videoPath, thumbnailPath, caption string, opts *UploadOptions) (*Result, error) {
	if opts == nil {
		opts = &UploadOptions{}
	}
	uploadID := opts.UploadID
	if uploadID == "" {
		uploadID = UploadID()
	}

	fields := []formField{
		{"upload_id", uploadID},
		{"_csrftoken", c.token},
		{"media_type", "2"},
		{"_uuid", c.uuid},
	}
	if opts.Sidecar {
		fields = append(fields, formField{"is_sidecar", "1"})
	}

	body, contentType, err := buildMultipart(c.uuid, fields, nil)
	if err != nil {
		return nil, errs.Newf(errs.ErrorTypeUnknown, "failed to build initiation body: %v", err)
	}

	res, err := c.postMultipart(ctx, epUploadVideo, contentType, body, uploadHeaders())
	if err != nil {
		return nil, err
	}
	logger.LogUpload(uploadID, "video", "initiate", res.OK, nil)
	if !res.OK {
		return res, nil
	}

	var uploadRes VideoUploadResponse
	if err := res.Decode(&uploadRes); err != nil {
		return nil, err
	}
	if len(uploadRes.VideoUploadURLs) < videoChunkCount {
		return nil, errs.Newf(errs.ErrorTypeParsing,
			"expected %d video upload urls, got %d", videoChunkCount, len(uploadRes.VideoUploadURLs))
	}
	target := uploadRes.VideoUploadURLs[videoChunkCount-1]

	videoData, err := os.ReadFile(videoPath)
	if err != nil {
		return nil, errs.Newf(errs.ErrorTypeValidation, "failed to read video: %v", err)
	}
	ranges, err := splitChunks(len(videoData))
	if err != nil {
		return nil, err
	}

	// Only the final chunk's response decides success; mid-chunk
	// rejections are ignored, transport failures still retry.
	var chunkRes *Result
	for i, r := range ranges {
		chunkRes, err = c.uploadChunk(ctx, target, uploadID, videoData[r.start:r.end], r)
		if err != nil {
			return nil, err
		}
		c.logger.DebugWithFields("video chunk sent", map[string]interface{}{
			"upload_id": uploadID,
			"chunk":     i + 1,
			"range":     r.contentRange(),
			"status":    chunkRes.StatusCode,
		})
	}
	logger.LogUpload(uploadID, "video", "chunks", chunkRes.OK, nil)
	if !chunkRes.OK {
		return chunkRes, nil
	}

	cfgRes, err := c.configureVideo(ctx, uploadID, videoPath, thumbnailPath, caption)
	if err != nil {
		logger.LogUpload(uploadID, "video", "configure", false, err)
		return nil, err
	}
	logger.LogUpload(uploadID, "video", "configure", cfgRes.OK, nil)
	if !cfgRes.OK {
		return cfgRes, nil
	}

	if _, err := c.Expose(ctx); err != nil {
		c.logger.WarnWithFields("exposure beacon failed", map[string]interface{}{
			"upload_id": uploadID,
			"error":     err.Error(),
		})
	}
	return cfgRes, nil
}

// uploadChunk posts one byte range to the server-assigned upload URL.
// The chunk's header set is composed per request; session defaults stay
// untouched.
func (c *Client) uploadChunk(ctx context.Context, target VideoUploadURL, uploadID string, chunk []byte, r byteRange) (*Result, error) {
	headers := map[string]string{
		"X-IG-Capabilities":    "3Q4=",
		"X-IG-Connection-Type": "WIFI",
		"Cookie2":              "$Version=1",
		"Accept-Language":      "en-US",
		"Accept-Encoding":      "gzip, deflate",
		"Session-ID":           uploadID,
		"Connection":           "keep-alive",
		"Content-Disposition":  `attachment; filename="video.mov"`,
		"job":                  target.Job,
		"Content-Range":        r.contentRange(),
		"User-Agent":           UserAgent,
	}
	return c.send(ctx, requestSpec{
		method:      http.MethodPost,
		absoluteURL: target.URL,
		body:        chunk,
		contentType: "application/octet-stream",
		headers:     headers,
	})
}

// configureVideo uploads the thumbnail under the video's upload id, then
// binds duration and dimensions from the video inspector.
func (c *Client) configureVideo(ctx context.Context, uploadID, videoPath, thumbnailPath, caption string) (*Result, error) {
	info, err := c.inspector.Probe(ctx, videoPath)
	if err != nil {
		return nil, errs.Newf(errs.ErrorTypeValidation, "failed to inspect video: %v", err)
	}

	thumbRes, err := c.UploadPhoto(ctx, thumbnailPath, caption, &UploadOptions{UploadID: uploadID})
	if err != nil {
		return nil, err
	}
	if !thumbRes.OK {
		return thumbRes, nil
	}

	body, err := c.signedBody(map[string]interface{}{
		"upload_id":          uploadID,
		"source_type":        3,
		"poster_frame_index": 0,
		"length":             0.00,
		"audio_muted":        false,
		"filter_type":        0,
		"video_result":       "deprecated",
		"clips": map[string]interface{}{
			"length":          info.Duration,
			"source_type":     "3",
			"camera_position": "back",
		},
		"extra": map[string]interface{}{
			"source_width":  info.Width,
			"source_height": info.Height,
		},
		"device":  deviceSettings(),
		"caption": caption,
	})
	if err != nil {
		return nil, err
	}
	return c.post(ctx, epConfigureVideo, body, false)
}

// UploadAlbum submits a 2-10 item album. Every item is validated before
// any network traffic: extension classification, usertag checks and the
// thumbnail requirement for videos. Items then upload sequentially as
// sidecar children, and one configure call binds them into the album. A
// failed child aborts the submission; already-uploaded children are left
// orphaned server-side.
func (c *Client) UploadAlbum(ctx context.Context, items []AlbumItem, caption string) (*Result, error) {
	entries, err := validateAlbum(items)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].uploadID = SidecarUploadID()
		opts := &UploadOptions{UploadID: entries[i].uploadID, Sidecar: true}

		var res *Result
		switch entries[i].kind {
		case media.KindPhoto:
			res, err = c.UploadPhoto(ctx, entries[i].item.Path, caption, opts)
		case media.KindVideo:
			info, probeErr := c.inspector.Probe(ctx, entries[i].item.Path)
			if probeErr != nil {
				return nil, errs.Newf(errs.ErrorTypeValidation,
					"failed to inspect video %s: %v", entries[i].item.Path, probeErr)
			}
			entries[i].info = info
			res, err = c.UploadVideo(ctx, entries[i].item.Path, entries[i].item.Thumbnail, caption, opts)
		}
		if err != nil {
			return nil, err
		}
		if !res.OK {
			return res, nil
		}
	}

	return c.configureSidecar(ctx, entries, caption)
}

// validateAlbum runs the pre-flight pass: size bounds, extension
// classification and usertag validation. No network traffic happens
// until every item has passed.
func validateAlbum(items []AlbumItem) ([]albumEntry, error) {
	if len(items) < 2 || len(items) > 10 {
		return nil, errs.Newf(errs.ErrorTypeValidation,
			"albums must contain 2 to 10 items, got %d", len(items))
	}

	entries := make([]albumEntry, 0, len(items))
	for i, item := range items {
		if item.Path == "" {
			return nil, errs.Newf(errs.ErrorTypeValidation, "item %d has no path", i)
		}

		kind := media.Classify(item.Path)
		if kind == media.KindUnknown {
			return nil, errs.Newf(errs.ErrorTypeUnsupportedMedia,
				"unsupported media type for %s", item.Path)
		}
		if kind == media.KindVideo && item.Thumbnail == "" {
			return nil, errs.Newf(errs.ErrorTypeValidation,
				"video item %s needs a thumbnail", item.Path)
		}

		if err := validateUsertags(item.Usertags); err != nil {
			return nil, err
		}

		entries = append(entries, albumEntry{item: item, kind: kind})
	}
	return entries, nil
}

// validateUsertags enforces the usertag shape: both position coordinates
// in [0,1] and a non-negative integer user id.
func validateUsertags(tags []Usertag) error {
	for _, tag := range tags {
		x, y := tag.Position[0], tag.Position[1]
		if x < 0.0 || x > 1.0 || y < 0.0 || y > 1.0 {
			return errs.Newf(errs.ErrorTypeValidation,
				"usertag position (%v, %v) outside the unit square", x, y)
		}
		id, err := strconv.ParseInt(tag.UserID, 10, 64)
		if err != nil || id < 0 {
			return errs.Newf(errs.ErrorTypeValidation,
				"usertag user_id %q is not a non-negative integer", tag.UserID)
		}
	}
	return nil
}

// configureSidecar binds the uploaded children into one album post.
func (c *Client) configureSidecar(ctx context.Context, entries []albumEntry, caption string) (*Result, error) {
	date := time.Now().UTC().Format("2006-01-02T15:04:05.000000")

	childrenMetadata := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		switch entry.kind {
		case media.KindPhoto:
			photoConfig := map[string]interface{}{
				"date_time_original":  date,
				"scene_type":          1,
				"disable_comments":    false,
				"upload_id":           entry.uploadID,
				"source_type":         0,
				"scene_capture_type":  "standard",
				"date_time_digitized": date,
				"geotag_enabled":      false,
				"camera_position":     "back",
				"edits": map[string]interface{}{
					"filter_strength": 1,
					"filter_name":     "IGNormalFilter",
				},
			}
			if len(entry.item.Usertags) > 0 {
				tagsJSON, err := json.Marshal(map[string]interface{}{"in": entry.item.Usertags})
				if err != nil {
					return nil, errs.Newf(errs.ErrorTypeUnknown, "failed to marshal usertags: %v", err)
				}
				photoConfig["usertags"] = string(tagsJSON)
			}
			childrenMetadata = append(childrenMetadata, photoConfig)

		case media.KindVideo:
			childrenMetadata = append(childrenMetadata, map[string]interface{}{
				"length":             entry.info.Duration,
				"date_time_original": date,
				"scene_type":         1,
				"poster_frame_index": 0,
				"trim_type":          0,
				"disable_comments":   false,
				"upload_id":          entry.uploadID,
				"source_type":        "library",
				"geotag_enabled":     false,
				"edits": map[string]interface{}{
					"length":          entry.info.Duration,
					"cinema":          "unsupported",
					"original_length": entry.info.Duration,
					"source_type":     "library",
					"start_time":      0,
					"camera_position": "unknown",
					"trim_type":       0,
				},
			})
		}
	}

	body, err := c.signedBody(map[string]interface{}{
		"client_sidecar_id": SidecarUploadID(),
		"caption":           caption,
		"children_metadata": childrenMetadata,
	})
	if err != nil {
		return nil, err
	}
	return c.post(ctx, epConfigureSidecar, body, false)
}

// byteRange is one video chunk: [start, end) of total bytes.
type byteRange struct {
	start, end int
	total      int
}

// contentRange renders the Content-Range header value for this chunk.
func (r byteRange) contentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", r.start, r.end-1, r.total)
}

// size returns the chunk length in bytes.
func (r byteRange) size() int { return r.end - r.start }

// splitChunks splits a video of the given length into exactly four
// contiguous ranges: three of floor(total/4) bytes and a final range
// absorbing the remainder.
func splitChunks(total int) ([]byteRange, error) {
	if total < videoChunkCount {
		return nil, errs.Newf(errs.ErrorTypeValidation,
			"video too small to upload: %d bytes", total)
	}

	base := total / videoChunkCount
	ranges := make([]byteRange, 0, videoChunkCount)
	for i := 0; i < videoChunkCount; i++ {
		start := i * base
		end := start + base
		if i == videoChunkCount-1 {
			end = total
		}
		ranges = append(ranges, byteRange{start: start, end: end, total: total})
	}
	return ranges, nil
}
