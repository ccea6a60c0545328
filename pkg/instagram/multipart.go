package instagram

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
)

// formField is one plain form-data part of a multipart body.
type formField struct {
	name  string
	value string
}

// filePart is the binary part of a multipart upload body.
type filePart struct {
	fieldName   string
	fileName    string
	contentType string
	data        []byte
}

// buildMultipart assembles a multipart/form-data body. The boundary is
// always the client instance uuid so the server can correlate parts of a
// session's uploads.
func buildMultipart(boundary string, fields []formField, file *filePart) (body []byte, contentType string, err error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(boundary); err != nil {
		return nil, "", fmt.Errorf("invalid multipart boundary: %w", err)
	}

	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, file.fieldName, file.fileName))
		h.Set("Content-Type", file.contentType)
		h.Set("Content-Transfer-Encoding", "binary")

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := part.Write(file.data); err != nil {
			return nil, "", fmt.Errorf("failed to write file part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}
