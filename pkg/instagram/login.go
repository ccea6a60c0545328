package instagram

import (
	"context"
	"encoding/json"
	"fmt"

	errs "igclient/pkg/errors"
)

// Login authenticates the session: a cookie-priming header fetch, then a
// signed login POST, then a fixed bootstrap sequence. A failure at any
// step before the bootstrap leaves the client fully anonymous; bootstrap
// failures are logged and never roll back authentication.
func (c *Client) Login(ctx context.Context) error {
	if c.loggedIn {
		return nil
	}

	res, err := c.get(ctx, fetchHeadersEndpoint(NewUUID(false)), true)
	if err != nil {
		return err
	}
	if !res.OK {
		return &errs.Error{
			Type:    errs.ErrorTypeLogin,
			Message: "header fetch rejected",
			Code:    res.StatusCode,
		}
	}

	token, err := c.csrfToken()
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeLogin,
			Message: "no csrf token after header fetch",
		}
	}

	payload := map[string]interface{}{
		"phone_id":            NewUUID(true),
		"_csrftoken":          token,
		"username":            c.username,
		"guid":                c.uuid,
		"device_id":           c.deviceID,
		"password":            c.password,
		"login_attempt_count": "0",
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return errs.Newf(errs.ErrorTypeUnknown, "failed to marshal login payload: %v", err)
	}

	res, err = c.post(ctx, epLogin, SignPayload(string(data)), true)
	if err != nil {
		return err
	}
	if !res.OK {
		return &errs.Error{
			Type:    errs.ErrorTypeLogin,
			Message: "login rejected",
			Code:    res.StatusCode,
		}
	}

	var loginRes LoginResponse
	if err := res.Decode(&loginRes); err != nil {
		return err
	}
	if loginRes.LoggedInUser.PK == 0 {
		return errs.New(errs.ErrorTypeParsing, "login response missing logged_in_user.pk")
	}

	c.loggedIn = true
	c.userID = loginRes.LoggedInUser.PK
	c.rankToken = fmt.Sprintf("%d_%s", c.userID, c.uuid)
	// The login response rotates the CSRF cookie; pick up the new value
	if token, err := c.csrfToken(); err == nil {
		c.token = token
	}

	c.logger.InfoWithFields("login succeeded", map[string]interface{}{
		"username": c.username,
		"user_id":  c.userID,
	})

	c.bootstrap(ctx)
	return nil
}

// bootstrap fires the fixed post-login warm-up sequence. Each call is
// best-effort; individual failures are logged and ignored.
func (c *Client) bootstrap(ctx context.Context) {
	steps := []struct {
		name string
		fn   func(context.Context) (*Result, error)
	}{
		{"sync_features", c.SyncFeatures},
		{"autocomplete_user_list", c.AutocompleteUserList},
		{"timeline_feed", c.TimelineFeed},
		{"inbox", c.Inbox},
		{"recent_activity", c.RecentActivity},
	}

	for _, step := range steps {
		res, err := step.fn(ctx)
		switch {
		case err != nil:
			c.logger.WarnWithFields("bootstrap call failed", map[string]interface{}{
				"step":  step.name,
				"error": err.Error(),
			})
		case !res.OK:
			c.logger.WarnWithFields("bootstrap call rejected", map[string]interface{}{
				"step":   step.name,
				"status": res.StatusCode,
			})
		}
	}
}

// Logout ends the session server-side and resets the local state.
func (c *Client) Logout(ctx context.Context) error {
	if !c.loggedIn {
		return nil
	}
	if _, err := c.get(ctx, epLogout, false); err != nil {
		return err
	}
	c.loggedIn = false
	c.userID = 0
	c.rankToken = ""
	c.token = ""
	return nil
}

// SyncFeatures reports the experiment blob to the feature-sync endpoint.
func (c *Client) SyncFeatures(ctx context.Context) (*Result, error) {
	body, err := c.signedBody(map[string]interface{}{
		"id":          c.userID,
		"experiments": c.experiments,
	})
	if err != nil {
		return nil, err
	}
	return c.post(ctx, epSyncFeatures, body, false)
}

// AutocompleteUserList warms the autocomplete cache.
func (c *Client) AutocompleteUserList(ctx context.Context) (*Result, error) {
	return c.get(ctx, epAutocomplete, false)
}

// TimelineFeed fetches the main feed.
func (c *Client) TimelineFeed(ctx context.Context) (*Result, error) {
	return c.get(ctx, epTimelineFeed, false)
}

// Inbox fetches the direct-message inbox.
func (c *Client) Inbox(ctx context.Context) (*Result, error) {
	return c.get(ctx, epInbox, false)
}

// RecentActivity fetches the activity news inbox.
func (c *Client) RecentActivity(ctx context.Context) (*Result, error) {
	return c.get(ctx, epRecentActivity, false)
}

// Expose fires the experiment-exposure beacon sent after successful
// uploads.
func (c *Client) Expose(ctx context.Context) (*Result, error) {
	body, err := c.signedBody(map[string]interface{}{
		"id":         c.userID,
		"experiment": exposeExperiment,
	})
	if err != nil {
		return nil, err
	}
	return c.post(ctx, epExpose, body, false)
}
