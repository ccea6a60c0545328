package instagram

import (
	"net/url"

	errs "igclient/pkg/errors"
	"igclient/pkg/session"
)

// ExportSession snapshots the authenticated state for persistence.
func (c *Client) ExportSession() (*session.Session, error) {
	if !c.loggedIn {
		return nil, errs.New(errs.ErrorTypeLoginRequired, "cannot export an anonymous session")
	}

	sess := &session.Session{
		Username:  c.username,
		UserID:    c.userID,
		DeviceID:  c.deviceID,
		UUID:      c.uuid,
		RankToken: c.rankToken,
		CSRFToken: c.token,
	}
	if u, err := url.Parse(c.baseURL); err == nil && c.httpClient.Jar != nil {
		sess.SetCookies(u, c.httpClient.Jar)
	}
	return sess, nil
}

// RestoreSession rehydrates the client from a saved session, skipping
// the login sequence. The server may still reject stale cookies; the
// caller falls back to Login when that happens.
func (c *Client) RestoreSession(sess *session.Session) error {
	if sess == nil || sess.UserID == 0 {
		return errs.New(errs.ErrorTypeValidation, "session is empty")
	}
	if sess.Username != c.username {
		return errs.Newf(errs.ErrorTypeValidation,
			"session belongs to %q, client is configured for %q", sess.Username, c.username)
	}

	c.deviceID = sess.DeviceID
	c.uuid = sess.UUID
	c.userID = sess.UserID
	c.rankToken = sess.RankToken
	c.token = sess.CSRFToken
	c.loggedIn = true

	if u, err := url.Parse(c.baseURL); err == nil && c.httpClient.Jar != nil {
		sess.RestoreCookies(u, c.httpClient.Jar)
	}
	return nil
}
