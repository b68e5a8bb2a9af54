// Package client talks to the DKT Learn REST backend.
//
// Client is the transport-agnostic contract the service layer depends on;
// HTTPClient implements it over net/http. Every call:
//
//   - attaches "Authorization: Bearer <token>" when the TokenStore holds one;
//   - unwraps the response envelope (a top-level array, or an object whose
//     "data" field is an array, is returned as the array);
//   - returns failures as *APIError, whose Message is fit for display and
//     which matches ErrUnauthorized, ErrForbidden, ErrNotFound, ErrServer,
//     ErrRequest or ErrUnavailable under errors.Is.
//
// # Token refresh
//
// A 401 on a call made with a session starts a one-shot renewal: the stored
// refresh token is exchanged at PathRefreshToken, the new credential is
// written back through TokenStore.Renew and the original call is replayed
// exactly once. Renewals are serialized. When no refresh token is stored or
// the renewal fails, the session is cleared, the hook registered with
// WithSessionExpiredHook runs, and the caller gets an *APIError that also
// matches common.ErrSessionExpired. RefreshState exposes the last state.
package client
