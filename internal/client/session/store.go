// Package session keeps the current credential and the identity derived
// from it in the local metadata table.
//
// The store is the single source of session state for the client: the HTTP
// layer reads the bearer token from it before every call and writes renewed
// tokens back; the auth facade saves it on login and clears it on logout.
// All multi-key writes run in one transaction, so a reader never sees a
// token without its matching identity.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/dktlearn/internal/client/claims"
	"github.com/dmitrijs2005/dktlearn/internal/client/models"
	"github.com/dmitrijs2005/dktlearn/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/dktlearn/internal/dbx"
)

// Keys of the persisted session. They are always cleared together.
const (
	KeyToken          = "token"
	KeyRefreshToken   = "refreshToken"
	KeyUser           = "user"
	KeySessionExpires = "sessionExpires"
)

var allKeys = []string{KeyToken, KeyRefreshToken, KeyUser, KeySessionExpires}

// Store persists the session in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns a Store over db. The metadata table must already exist
// (see storage.Open).
func NewStore(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) repo() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

// Save persists cred and the identity decoded from it, replacing any prior
// session. The returned identity is nil when the token carries no usable
// claims. A previously set session expiry is dropped.
func (s *Store) Save(ctx context.Context, cred models.Credential) (*models.Identity, error) {
	return s.save(ctx, cred, func(ctx context.Context, r metadata.Repository) error {
		return r.Delete(ctx, KeySessionExpires)
	})
}

// SaveWithExpiry is Save plus a hard session deadline ttl from now, after
// which IsValid reports false regardless of the token's own expiry.
func (s *Store) SaveWithExpiry(ctx context.Context, cred models.Credential, ttl time.Duration) (*models.Identity, error) {
	deadline := s.now().Add(ttl).UnixMilli()
	return s.save(ctx, cred, func(ctx context.Context, r metadata.Repository) error {
		return r.Set(ctx, KeySessionExpires, []byte(strconv.FormatInt(deadline, 10)))
	})
}

// Renew stores a refreshed credential, keeping the current session deadline.
// It is what the HTTP client calls after a successful token refresh.
func (s *Store) Renew(ctx context.Context, cred models.Credential) error {
	_, err := s.save(ctx, cred, nil)
	return err
}

func (s *Store) save(ctx context.Context, cred models.Credential, extra func(context.Context, metadata.Repository) error) (*models.Identity, error) {
	if cred.IsZero() {
		return nil, fmt.Errorf("save session: empty access token")
	}

	identity := claims.Parse(cred.AccessToken)
	user, err := json.Marshal(identity)
	if err != nil {
		return nil, fmt.Errorf("save session: encode identity: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := metadata.NewSQLiteRepository(tx)
		if err := r.Set(ctx, KeyToken, []byte(cred.AccessToken)); err != nil {
			return err
		}
		if cred.RefreshToken != "" {
			if err := r.Set(ctx, KeyRefreshToken, []byte(cred.RefreshToken)); err != nil {
				return err
			}
		} else if err := r.Delete(ctx, KeyRefreshToken); err != nil {
			return err
		}
		if err := r.Set(ctx, KeyUser, user); err != nil {
			return err
		}
		if extra != nil {
			return extra(ctx, r)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if identity.IsZero() {
		return nil, nil
	}
	return &identity, nil
}

// Credential returns the stored token pair; the zero value when logged out.
func (s *Store) Credential(ctx context.Context) (models.Credential, error) {
	r := s.repo()
	token, err := r.Get(ctx, KeyToken)
	if err != nil {
		return models.Credential{}, err
	}
	refresh, err := r.Get(ctx, KeyRefreshToken)
	if err != nil {
		return models.Credential{}, err
	}
	return models.Credential{AccessToken: string(token), RefreshToken: string(refresh)}, nil
}

// Current returns the identity of the stored session, or nil when there is
// no session or its token yields no claims. The cached identity is used when
// readable; otherwise it is re-derived from the token.
func (s *Store) Current(ctx context.Context) (*models.Identity, error) {
	r := s.repo()
	token, err := r.Get(ctx, KeyToken)
	if err != nil {
		return nil, err
	}
	if len(token) == 0 {
		return nil, nil
	}

	var identity models.Identity
	cached, err := r.Get(ctx, KeyUser)
	if err != nil {
		return nil, err
	}
	if len(cached) == 0 || json.Unmarshal(cached, &identity) != nil {
		identity = claims.Parse(string(token))
	}

	if identity.IsZero() {
		return nil, nil
	}
	return &identity, nil
}

// IsValid reports whether a usable session exists: a token is stored, its
// exp claim (if any) has not passed and the session deadline (if any) has not
// passed. An elapsed session deadline also clears the session.
func (s *Store) IsValid(ctx context.Context) (bool, error) {
	r := s.repo()
	token, err := r.Get(ctx, KeyToken)
	if err != nil {
		return false, err
	}
	if len(token) == 0 {
		return false, nil
	}

	now := s.now()

	deadline, err := r.Get(ctx, KeySessionExpires)
	if err != nil {
		return false, err
	}
	if len(deadline) > 0 {
		ms, perr := strconv.ParseInt(string(deadline), 10, 64)
		if perr == nil && now.UnixMilli() > ms {
			if err := s.Clear(ctx); err != nil {
				return false, err
			}
			return false, nil
		}
	}

	return !claims.Expired(string(token), now), nil
}

// Clear removes every session key in one transaction.
func (s *Store) Clear(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, allKeys...)
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
