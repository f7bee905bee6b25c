package isapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"doorctl/internal/digest"
	"doorctl/internal/logging"
)

// DefaultTimeout bounds each physical HTTP attempt independently.
const DefaultTimeout = 10 * time.Second

// Transport executes panel requests with automatic Digest challenge/response
// retry. It sends each request unauthenticated first; on a 401 carrying a
// challenge it builds a credential and resends exactly once. There is no
// retry loop beyond that single re-authentication.
//
// Connections are never reused across requests: each physical attempt is its
// own connection. That trades efficiency for simplicity and avoids state
// leaking between the unauthenticated and authenticated attempts.
type Transport struct {
	// Auth computes Digest credentials; one Authenticator per operation
	Auth *digest.Authenticator

	// Timeout applies to each physical attempt independently
	Timeout time.Duration

	client *http.Client
}

// NewTransport creates a Transport around the given authenticator.
func NewTransport(auth *digest.Authenticator) *Transport {
	return &Transport{
		Auth:    auth,
		Timeout: DefaultTimeout,
		client: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				DisableKeepAlives: true,
			},
		},
	}
}

// SetTimeout sets the per-attempt timeout
func (t *Transport) SetTimeout(timeout time.Duration) {
	t.Timeout = timeout
	t.client.Timeout = timeout
}

// Do executes one logical request against the target and returns the raw
// response body of the final attempt. Failures map to the taxonomy:
// connection/write errors and non-2xx final statuses are Transport errors,
// deadline expiry is a Timeout, and a 401 whose challenge cannot produce a
// credential is a ChallengeParse failure.
func (t *Transport) Do(ctx context.Context, target DeviceTarget, req Request) ([]byte, error) {
	status, body, challenge, err := t.attempt(ctx, target, req, "")
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		if len(challenge) == 0 {
			return nil, NewTransportError("401 response without a digest challenge", status, nil)
		}
		header, _, err := t.Auth.Authorize(challenge, req.Method, req.Path)
		if err != nil {
			return nil, NewChallengeParseError(err.Error())
		}

		status, body, _, err = t.attempt(ctx, target, req, header)
		if err != nil {
			return nil, err
		}
	}

	if status < 200 || status >= 300 {
		return nil, NewTransportError(
			fmt.Sprintf("panel answered status %d: %s", status, truncate(body, 200)),
			status, nil)
	}

	return body, nil
}

// attempt performs one physical HTTP request. A non-empty authorization
// header marks the authenticated retry. The parsed challenge of a 401
// response is returned so the caller re-parses a fresh challenge on every
// 401 instead of assuming nonce reuse is valid.
func (t *Transport) attempt(ctx context.Context, target DeviceTarget, req Request, authorization string) (int, []byte, digest.Challenge, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.BaseURL()+req.Path, strings.NewReader(req.Body))
	if err != nil {
		return 0, nil, nil, NewTransportError("failed to create request", 0, err)
	}

	httpReq.Header.Set("Content-Type", "text/xml")
	httpReq.Header.Set("Connection", "close")
	httpReq.Close = true
	if authorization != "" {
		httpReq.Header.Set("Authorization", authorization)
	}
	logging.LogPanelRequest(target.Host, req.Method, req.Path, authorization != "")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return 0, nil, nil, ClassifyTransportError(err, target.Host)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, ClassifyTransportError(err, target.Host)
	}

	var challenge digest.Challenge
	if resp.StatusCode == http.StatusUnauthorized {
		challenge = digest.ParseChallenge(resp.Header.Get("WWW-Authenticate"))
	}

	return resp.StatusCode, body, challenge, nil
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
