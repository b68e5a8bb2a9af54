package client

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/dmitrijs2005/dktlearn/internal/client/models"
	"github.com/dmitrijs2005/dktlearn/internal/common"
)

// RefreshState is the state of the token renewal flow.
//
//	Idle --401--> Retrying --renewed, replayed--> Idle
//	                 |
//	                 +--no refresh token / renewal failed--> Failed
//
// Failed is left by the next successful renewal; a new login does not need
// to reset it.
type RefreshState int32

const (
	StateIdle RefreshState = iota
	StateRetrying
	StateFailed
)

func (s RefreshState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRetrying:
		return "retrying"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type stateHolder struct {
	v atomic.Int32
}

func (h *stateHolder) set(s RefreshState) { h.v.Store(int32(s)) }
func (h *stateHolder) get() RefreshState  { return RefreshState(h.v.Load()) }

// RefreshState reports the last transition of the renewal flow.
func (c *HTTPClient) RefreshState() RefreshState {
	return c.state.get()
}

var errNoRefreshToken = errors.New("no refresh token stored")

// refresh renews the access token that came back 401. Renewals are
// serialized: when another call already replaced staleToken while this one
// waited, the stored credential is reused without a second renewal, and when
// that call failed and cleared the session, the failure is reported without
// clearing or notifying again.
func (c *HTTPClient) refresh(ctx context.Context, staleToken string) (models.Credential, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	cred, err := c.tokens.Credential(ctx)
	if err != nil {
		return models.Credential{}, c.fail(ctx, err)
	}
	if !cred.IsZero() && cred.AccessToken != staleToken {
		return cred, nil
	}
	if cred.IsZero() && staleToken != "" {
		// a peer's renewal failed and already ended the session
		return models.Credential{}, sessionEnded(errors.New("session cleared while waiting for renewal"))
	}

	c.state.set(StateRetrying)

	if cred.RefreshToken == "" {
		return models.Credential{}, c.fail(ctx, errNoRefreshToken)
	}

	renewed, err := c.RefreshToken(ctx, cred.RefreshToken)
	if err != nil {
		return models.Credential{}, c.fail(ctx, err)
	}
	if renewed.RefreshToken == "" {
		renewed.RefreshToken = cred.RefreshToken
	}
	if err := c.tokens.Renew(ctx, renewed); err != nil {
		return models.Credential{}, c.fail(ctx, err)
	}

	c.logger.Info(ctx, "access token renewed")
	return renewed, nil
}

// fail moves the flow to Failed: the session is wiped and the expiry hook
// fires. The returned error is what the original caller sees.
func (c *HTTPClient) fail(ctx context.Context, cause error) error {
	c.state.set(StateFailed)

	if err := c.tokens.Clear(ctx); err != nil {
		c.logger.Error(ctx, "clear session after failed refresh", "error", err)
	}
	c.logger.Warn(ctx, "token refresh failed, session cleared", "error", cause)

	if c.onSessionExpired != nil {
		c.onSessionExpired(ctx)
	}

	return sessionEnded(cause)
}

func sessionEnded(cause error) error {
	return &APIError{
		Status:  http.StatusUnauthorized,
		Message: MsgSessionEnded,
		Err:     errors.Join(common.ErrSessionExpired, cause),
	}
}

// RefreshToken exchanges a refresh token for a new credential. The refresh
// endpoint is exempt from the 401 retry.
func (c *HTTPClient) RefreshToken(ctx context.Context, refreshToken string) (models.Credential, error) {
	var resp tokenResponse
	err := c.call(ctx, http.MethodPost, PathRefreshToken, map[string]string{"refreshToken": refreshToken}, &resp)
	if err != nil {
		return models.Credential{}, err
	}
	cred := resp.credential()
	if cred.IsZero() {
		return models.Credential{}, newLocalError(errors.New("refresh response carried no access token"))
	}
	return cred, nil
}
