package instagram

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"igclient/pkg/config"
	errs "igclient/pkg/errors"
	"igclient/pkg/logger"
	"igclient/pkg/media"
	"igclient/pkg/ratelimit"
	"igclient/pkg/retry"
)

// Client is an authenticated session against the private API. It owns
// the cookie state, the signed-request plumbing and the upload
// pipelines. Not safe for concurrent use.
type Client struct {
	username string
	password string

	deviceID string
	// uuid is the long-lived instance identifier, reused as the
	// multipart boundary and as the direct-message client context
	uuid string

	httpClient *http.Client
	baseURL    string

	limiter       ratelimit.Limiter
	retryAttempts int
	retryDelay    time.Duration
	logger        logger.Logger

	inspector   media.VideoInspector
	experiments string

	loggedIn  bool
	userID    int64
	rankToken string
	token     string
}

// New creates a client for the account in cfg. No network traffic
// happens until Login.
func New(cfg *config.Config, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	transport := &http.Transport{
		// The target service's certificate chain does not validate;
		// skipping verification is a compatibility trade-off, not a
		// security feature.
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URI: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		log.InfoWithFields("proxy configured", map[string]interface{}{
			"host": proxyURL.Host,
		})
	}

	experiments, err := cfg.ExperimentsBlob()
	if err != nil {
		return nil, err
	}
	if experiments == "" {
		experiments = defaultExperiments
	}

	c := &Client{
		username: cfg.Account.Username,
		password: cfg.Account.Password,
		deviceID: DeviceID(cfg.Account.Username, cfg.Account.Password),
		uuid:     NewUUID(true),
		httpClient: &http.Client{
			Jar:       jar,
			Timeout:   cfg.Transport.RequestTimeout,
			Transport: transport,
		},
		baseURL:       APIURL,
		limiter:       ratelimit.NewTokenBucket(cfg.Transport.RequestsPerMinute, time.Minute),
		retryAttempts: cfg.Transport.RetryAttempts,
		retryDelay:    cfg.Transport.RetryDelay,
		logger:        log,
		inspector:     &media.FFProbe{},
		experiments:   experiments,
	}
	return c, nil
}

// SetVideoInspector replaces the video inspection collaborator.
func (c *Client) SetVideoInspector(inspector media.VideoInspector) {
	c.inspector = inspector
}

// IsLoggedIn reports whether a login has completed on this client.
func (c *Client) IsLoggedIn() bool { return c.loggedIn }

// UserID returns the numeric account identifier, zero before login.
func (c *Client) UserID() int64 { return c.userID }

// RankToken returns the per-session token required by ranked-feed
// endpoints, empty before login.
func (c *Client) RankToken() string { return c.rankToken }

// UUID returns the long-lived instance identifier.
func (c *Client) UUID() string { return c.uuid }

// DeviceID returns the derived device identifier.
func (c *Client) DeviceID() string { return c.deviceID }

// Result is the outcome of one API round-trip. OK means HTTP 200 with a
// decoded JSON body. A non-OK Result still carries whatever body the
// server sent so callers can inspect the failure.
type Result struct {
	StatusCode int
	Body       []byte
	JSON       map[string]interface{}
	OK         bool
}

// Decode unmarshals the response body into v.
func (r *Result) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to decode response: %v", err),
			Code:    r.StatusCode,
		}
	}
	return nil
}

// requestSpec describes one API round-trip. Headers compose a one-off
// set for this request; session defaults are never mutated.
type requestSpec struct {
	method      string
	endpoint    string // relative to baseURL unless absoluteURL is set
	absoluteURL string
	body        []byte
	contentType string
	headers     map[string]string
	// allowBeforeLogin permits the call while the session is anonymous
	allowBeforeLogin bool
}

// get performs an unsigned GET against an API endpoint.
func (c *Client) get(ctx context.Context, endpoint string, allowBeforeLogin bool) (*Result, error) {
	return c.send(ctx, requestSpec{
		method:           http.MethodGet,
		endpoint:         endpoint,
		allowBeforeLogin: allowBeforeLogin,
	})
}

// post performs a form-encoded POST against an API endpoint. The body is
// normally a signed-body envelope produced by SignPayload.
func (c *Client) post(ctx context.Context, endpoint, body string, allowBeforeLogin bool) (*Result, error) {
	return c.send(ctx, requestSpec{
		method:           http.MethodPost,
		endpoint:         endpoint,
		body:             []byte(body),
		allowBeforeLogin: allowBeforeLogin,
	})
}

// postMultipart performs a multipart POST with upload headers.
func (c *Client) postMultipart(ctx context.Context, endpoint, contentType string, body []byte, headers map[string]string) (*Result, error) {
	return c.send(ctx, requestSpec{
		method:      http.MethodPost,
		endpoint:    endpoint,
		body:        body,
		contentType: contentType,
		headers:     headers,
	})
}

// send performs one API round-trip. Transport-level failures (DNS,
// connection reset, timeout) are retried with a fixed delay up to the
// configured attempt ceiling; any HTTP status ends the retry loop. On
// 200 the decoded body is returned in an OK Result. On other statuses
// the body is decoded best-effort and inspected for the blocked-account
// sentinel, which surfaces as a distinct fatal error; everything else is
// a non-OK Result left for the caller to inspect.
func (c *Client) send(ctx context.Context, spec requestSpec) (*Result, error) {
	if !c.loggedIn && !spec.allowBeforeLogin {
		return nil, errs.New(errs.ErrorTypeLoginRequired,
			"not logged in; call Login first")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errs.Newf(errs.ErrorTypeNetwork, "rate limit wait cancelled: %v", err)
	}

	var resp *http.Response
	start := time.Now()

	retryCfg := &retry.Config{
		MaxAttempts: c.retryAttempts,
		Backoff:     &retry.ConstantBackoff{Delay: c.retryDelay},
		RetryIf: func(err error) bool {
			var apiErr *errs.Error
			if stderrors.As(err, &apiErr) {
				return apiErr.Type == errs.ErrorTypeNetwork
			}
			return false
		},
		Context: ctx,
		Logger:  c.logger,
	}

	err := retry.Do(func() error {
		req, err := c.buildRequest(ctx, spec)
		if err != nil {
			return err
		}
		r, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return errs.Newf(errs.ErrorTypeNetwork, "transport error: %v", doErr)
		}
		resp = r
		return nil
	}, retryCfg)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Newf(errs.ErrorTypeNetwork, "failed to read response body: %v", err)
	}

	logger.LogRequest(spec.method, c.requestTarget(spec), resp.StatusCode,
		float64(time.Since(start).Milliseconds()))

	result := &Result{StatusCode: resp.StatusCode, Body: body}

	if resp.StatusCode == http.StatusOK {
		if err := json.Unmarshal(body, &result.JSON); err != nil {
			return nil, &errs.Error{
				Type:    errs.ErrorTypeParsing,
				Message: fmt.Sprintf("failed to parse response JSON: %v", err),
				Code:    resp.StatusCode,
			}
		}
		result.OK = true
		return result, nil
	}

	// Best-effort decode of the error body; failure to parse is not an
	// error in itself
	_ = json.Unmarshal(body, &result.JSON)

	if errorType, ok := result.JSON["error_type"].(string); ok && errorType == sentryBlockErrorType {
		message, _ := result.JSON["message"].(string)
		return nil, &errs.Error{
			Type:    errs.ErrorTypeSentryBlock,
			Message: message,
			Code:    resp.StatusCode,
		}
	}

	c.logger.WarnWithFields("request rejected", map[string]interface{}{
		"endpoint": c.requestTarget(spec),
		"status":   resp.StatusCode,
	})
	return result, nil
}

// buildRequest assembles a fresh request for one attempt. Headers start
// from the session defaults and are overlaid with the spec's one-off
// set.
func (c *Client) buildRequest(ctx context.Context, spec requestSpec) (*http.Request, error) {
	target := c.requestTarget(spec)

	var bodyReader io.Reader
	if spec.body != nil {
		bodyReader = bytes.NewReader(spec.body)
	}

	req, err := http.NewRequestWithContext(ctx, spec.method, target, bodyReader)
	if err != nil {
		return nil, errs.Newf(errs.ErrorTypeUnknown, "failed to create request: %v", err)
	}

	for key, value := range defaultHeaders() {
		req.Header.Set(key, value)
	}
	if spec.contentType != "" {
		req.Header.Set("Content-Type", spec.contentType)
	}
	for key, value := range spec.headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

func (c *Client) requestTarget(spec requestSpec) string {
	if spec.absoluteURL != "" {
		return spec.absoluteURL
	}
	return c.baseURL + spec.endpoint
}

// defaultHeaders is the fixed header set carried by ordinary API calls.
func defaultHeaders() map[string]string {
	return map[string]string{
		"Connection":      "close",
		"Accept":          "*/*",
		"Content-Type":    "application/x-www-form-urlencoded; charset=UTF-8",
		"Cookie2":         "$Version=1",
		"Accept-Language": "en-US",
		"User-Agent":      UserAgent,
	}
}

// uploadHeaders is the header overlay for multipart upload calls.
func uploadHeaders() map[string]string {
	return map[string]string{
		"X-IG-Capabilities":    "3Q4=",
		"X-IG-Connection-Type": "WIFI",
		"Cookie2":              "$Version=1",
		"Accept-Language":      "en-US",
		"Accept-Encoding":      "gzip, deflate",
		"Connection":           "close",
		"User-Agent":           UserAgent,
	}
}

// csrfToken reads the current CSRF token from the cookie jar.
func (c *Client) csrfToken() (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	for _, cookie := range c.httpClient.Jar.Cookies(base) {
		if cookie.Name == "csrftoken" {
			return cookie.Value, nil
		}
	}
	return "", errs.New(errs.ErrorTypeParsing, "csrftoken cookie not present")
}

// signedBody marshals the account-scoped payload fields plus extra and
// wraps them in the signed-body envelope.
func (c *Client) signedBody(extra map[string]interface{}) (string, error) {
	payload := map[string]interface{}{
		"_uuid":      c.uuid,
		"_uid":       c.userID,
		"_csrftoken": c.token,
	}
	for k, v := range extra {
		payload[k] = v
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", errs.Newf(errs.ErrorTypeUnknown, "failed to marshal payload: %v", err)
	}
	return SignPayload(string(data)), nil
}

// joinRecipients renders the doubly-quoted recipient list format the
// broadcast endpoints expect.
func joinRecipients(recipients []string) string {
	return fmt.Sprintf(`[["%s"]]`, strings.Join(recipients, `"",""`))
}
