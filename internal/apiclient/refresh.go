package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"semaphore/dashboard/internal/session"
)

type State int

const (
	StateIdle State = iota
	StateRefreshInFlight
	StateRefreshFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRefreshInFlight:
		return "refresh_in_flight"
	case StateRefreshFailed:
		return "refresh_failed"
	default:
		return "unknown"
	}
}

const refreshKey = "refresh"

type refreshRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	Tokens       *session.Tokens `json:"tokens"`
}

func (r refreshResponse) tokens() session.Tokens {
	if r.Tokens != nil && r.Tokens.AccessToken != "" {
		return *r.Tokens
	}
	return session.Tokens{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// awaitRefresh returns an access token to replay a request that was rejected
// while carrying stale. Concurrent callers share one refresh call.
func (c *Client) awaitRefresh(ctx context.Context, stale string) (string, error) {
	current, _ := c.tokens.Read(ctx)
	if current.AccessToken != "" && current.AccessToken != stale {
		return current.AccessToken, nil
	}

	c.mu.Lock()
	if c.state == StateRefreshFailed && c.failed != "" && c.failed == current.RefreshToken {
		err := c.lastErr
		c.mu.Unlock()
		return "", err
	}
	c.mu.Unlock()

	ch := c.group.DoChan(refreshKey, func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx), stale)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) refresh(ctx context.Context, stale string) (string, error) {
	// A flight that finished just before this one may already have stored a
	// newer access token.
	current, _ := c.tokens.Read(ctx)
	if current.AccessToken != "" && current.AccessToken != stale {
		return current.AccessToken, nil
	}

	c.setState(StateRefreshInFlight)
	c.logger.Info("refreshing access token")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	fresh, err := c.exchange(ctx, current)
	c.metrics.observeRefresh(err)
	if err != nil {
		c.fail(context.WithoutCancel(ctx), current.RefreshToken, err)
		return "", err
	}

	if fresh.RefreshToken != "" {
		err = c.tokens.SaveTokens(ctx, fresh)
	} else {
		err = c.tokens.UpdateAccessToken(ctx, fresh.AccessToken)
	}
	if err != nil {
		c.logger.Warn("refreshed token not persisted", "error", err)
	}

	c.mu.Lock()
	c.state = StateIdle
	c.failed = ""
	c.lastErr = nil
	c.mu.Unlock()
	return fresh.AccessToken, nil
}

func (c *Client) exchange(ctx context.Context, current session.Tokens) (session.Tokens, error) {
	if current.RefreshToken == "" {
		return session.Tokens{}, ErrNoRefreshToken
	}
	payload, err := encodeBody(refreshRequest{
		AccessToken:  current.AccessToken,
		RefreshToken: current.RefreshToken,
	})
	if err != nil {
		return session.Tokens{}, err
	}
	resp, err := c.send(ctx, request{method: http.MethodPost, path: c.refreshPath, body: payload}, current.AccessToken)
	if err != nil {
		return session.Tokens{}, err
	}
	var body refreshResponse
	if err := resp.Decode(&body); err != nil {
		return session.Tokens{}, err
	}
	fresh := body.tokens()
	if fresh.AccessToken == "" {
		return session.Tokens{}, fmt.Errorf("refresh response missing access token")
	}
	return fresh, nil
}

// fail records a refresh failure. Only a refresh token the backend rejected
// is remembered; transport errors and 5xx responses leave the next 401 free to
// try again.
func (c *Client) fail(ctx context.Context, refreshToken string, err error) {
	c.mu.Lock()
	c.state = StateRefreshFailed
	c.failed = ""
	if isRejection(err) {
		c.failed = refreshToken
	}
	c.lastErr = err
	c.mu.Unlock()

	c.logger.Warn("token refresh failed", "error", err)
	if !c.clearOnRefreshFailure {
		return
	}
	if clearErr := c.tokens.Clear(ctx); clearErr != nil {
		c.logger.Warn("session not cleared after refresh failure", "error", clearErr)
	}
}

func (c *Client) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

func isRejection(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	switch httpErr.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}

func isUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
