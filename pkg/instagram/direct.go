package instagram

import (
	"context"

	errs "igclient/pkg/errors"
)

// DirectMessage broadcasts a text message to one or more recipients
// over the direct message threads endpoint.
func (c *Client) DirectMessage(ctx context.Context, recipients []string, text string) (*Result, error) {
	if len(recipients) == 0 {
		return nil, errs.New(errs.ErrorTypeValidation, "direct message needs at least one recipient")
	}

	fields := []formField{
		{"recipient_users", joinRecipients(recipients)},
		{"client_context", c.uuid},
		{"thread", `["0"]`},
		{"text", text},
	}

	body, contentType, err := buildMultipart(c.uuid, fields, nil)
	if err != nil {
		return nil, errs.Newf(errs.ErrorTypeUnknown, "failed to build broadcast body: %v", err)
	}
	return c.postMultipart(ctx, epDirectText, contentType, body, directHeaders())
}

// DirectShare shares an existing media post to one or more recipients,
// optionally with an accompanying text message.
func (c *Client) DirectShare(ctx context.Context, mediaID string, recipients []string, text string) (*Result, error) {
	if mediaID == "" {
		return nil, errs.New(errs.ErrorTypeValidation, "direct share needs a media id")
	}
	if len(recipients) == 0 {
		return nil, errs.New(errs.ErrorTypeValidation, "direct share needs at least one recipient")
	}

	fields := []formField{
		{"media_id", mediaID},
		{"recipient_users", joinRecipients(recipients)},
		{"client_context", c.uuid},
		{"thread", `["0"]`},
		{"text", text},
	}

	body, contentType, err := buildMultipart(c.uuid, fields, nil)
	if err != nil {
		return nil, errs.Newf(errs.ErrorTypeUnknown, "failed to build broadcast body: %v", err)
	}
	return c.postMultipart(ctx, epDirectShare, contentType, body, directHeaders())
}

// directHeaders is the header overlay for direct broadcast calls.
func directHeaders() map[string]string {
	return map[string]string{
		"User-Agent":       UserAgent,
		"Proxy-Connection": "keep-alive",
		"Connection":       "keep-alive",
		"Accept":           "*/*",
		"Accept-Language":  "en-en",
	}
}
