package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/dktlearn/internal/client/client"
	"github.com/dmitrijs2005/dktlearn/internal/client/fakeapi"
	"github.com/dmitrijs2005/dktlearn/internal/client/models"
	"github.com/dmitrijs2005/dktlearn/internal/client/session"
	"github.com/dmitrijs2005/dktlearn/internal/client/storage"
	"github.com/dmitrijs2005/dktlearn/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stack struct {
	api       *fakeapi.Server
	store     *session.Store
	http      *client.HTTPClient
	auth      AuthService
	community CommunityService
	users     UserService
	expired   int
}

func newStack(t *testing.T, opts ...fakeapi.Option) *stack {
	t.Helper()
	ctx := context.Background()

	api := fakeapi.New(opts...)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := &stack{api: api, store: session.NewStore(db)}
	s.http, err = client.NewHTTPClient(srv.URL, s.store,
		client.WithSessionExpiredHook(func(context.Context) { s.expired++ }))
	require.NoError(t, err)

	s.auth = NewAuthService(s.http, s.store)
	s.community = NewCommunityService(s.http)
	s.users = NewUserService(s.http)
	return s
}

func TestE2E_RegisterLoginCarriesBearer(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	require.NoError(t, s.auth.Register(ctx, models.RegisterRequest{
		Username: "ana", Email: "ana@dkt.io", Password: "Abcdef1!",
	}))

	id, err := s.auth.Login(ctx, "ana", "Abcdef1!", true)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "ana", id.Username)
	assert.True(t, id.HasRole(models.RoleStudent))

	current, err := s.auth.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "ana", current.Username)

	ok, err := s.auth.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	// protected route only answers with a valid bearer
	msg, err := s.auth.CheckAccess(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "Authenticated as ana", msg)

	_, err = s.auth.CheckAccess(ctx, true)
	assert.ErrorIs(t, err, client.ErrForbidden)
}

func TestE2E_LoginByEmail(t *testing.T) {
	s := newStack(t)
	s.api.AddUser("ana", "ana@dkt.io", "Abcdef1!")

	id, err := s.auth.Login(context.Background(), "ana@dkt.io", "Abcdef1!", false)
	require.NoError(t, err)
	assert.Equal(t, "ana@dkt.io", id.Email)
}

func TestE2E_EmptyTitleIsRejectedWithoutNetwork(t *testing.T) {
	s := newStack(t)
	s.api.AddUser("ana", "ana@dkt.io", "Abcdef1!")
	ctx := context.Background()
	_, err := s.auth.Login(ctx, "ana", "Abcdef1!", true)
	require.NoError(t, err)

	_, err = s.community.CreatePost(ctx, "", "body")
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Zero(t, s.api.Hits(http.MethodPost, client.PathPosts))
}

func TestE2E_LikeTwiceTogglesBack(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts []fakeapi.Option
	}{
		{"echo", nil},
		{"no echo, data envelope", []fakeapi.Option{fakeapi.WithoutEcho(), fakeapi.WithDataEnvelope()}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := newStack(t, tc.opts...)
			s.api.AddUser("ana", "ana@dkt.io", "Abcdef1!")
			postID := s.api.AddPost("ana", "Hello", "World")
			ctx := context.Background()

			id, err := s.auth.Login(ctx, "ana", "Abcdef1!", true)
			require.NoError(t, err)

			feed := NewFeed(s.community)
			feed.SetViewer(id.Username)
			_, err = feed.Refresh(ctx)
			require.NoError(t, err)

			post, err := feed.ToggleLike(ctx, postID)
			require.NoError(t, err)
			assert.True(t, post.LikedBy("ana"))

			post, err = feed.ToggleLike(ctx, postID)
			require.NoError(t, err)
			assert.False(t, post.LikedBy("ana"))
			assert.Equal(t, 2, s.api.Hits(http.MethodPost, client.PathPosts+"/"+postID.String()+"/like"))
		})
	}
}

func TestE2E_ExpiredTokenIsRenewedTransparently(t *testing.T) {
	s := newStack(t)
	s.api.AddUser("ana", "ana@dkt.io", "Abcdef1!")
	s.api.AddPost("ana", "Hello", "World")
	ctx := context.Background()
	_, err := s.auth.Login(ctx, "ana", "Abcdef1!", true)
	require.NoError(t, err)

	before, err := s.store.Credential(ctx)
	require.NoError(t, err)

	s.api.ExpireAccessTokens()

	posts, err := s.community.ListPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	after, err := s.store.Credential(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, before.AccessToken, after.AccessToken)
	assert.NotEqual(t, before.RefreshToken, after.RefreshToken)
	assert.Equal(t, 1, s.api.Hits(http.MethodPost, client.PathRefreshToken))
	assert.Equal(t, 2, s.api.Hits(http.MethodGet, client.PathPosts))
	assert.Zero(t, s.expired)
}

func TestE2E_RevokedRefreshEndsSession(t *testing.T) {
	s := newStack(t)
	s.api.AddUser("ana", "ana@dkt.io", "Abcdef1!")
	ctx := context.Background()
	_, err := s.auth.Login(ctx, "ana", "Abcdef1!", true)
	require.NoError(t, err)

	s.api.ExpireAccessTokens()
	s.api.RevokeRefreshTokens()

	_, err = s.community.ListPosts(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSessionExpired)
	assert.Equal(t, 1, s.expired)

	current, err := s.auth.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
	assert.Equal(t, client.StateFailed, s.http.RefreshState())
}

func TestE2E_LogoutClearsSession(t *testing.T) {
	s := newStack(t)
	s.api.AddUser("ana", "ana@dkt.io", "Abcdef1!")
	ctx := context.Background()
	_, err := s.auth.Login(ctx, "ana", "Abcdef1!", true)
	require.NoError(t, err)

	require.NoError(t, s.auth.Logout(ctx))

	current, err := s.auth.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
	assert.Equal(t, 1, s.api.Hits(http.MethodPost, client.PathLogout))
	assert.ErrorIs(t, s.auth.Logout(ctx), common.ErrNotLoggedIn)
}

func TestE2E_PasswordReset(t *testing.T) {
	s := newStack(t)
	s.api.AddUser("ana", "ana@dkt.io", "Old1234!")
	ctx := context.Background()

	reset := NewPasswordReset(s.auth)
	require.NoError(t, reset.Request(ctx, "ana@dkt.io"))

	err := reset.Submit(ctx, "999999", "Abcdef1!", "Abcdef1!")
	var rerr *ResetError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, ReasonInvalidCode, rerr.Reason)

	require.NoError(t, reset.Submit(ctx, s.api.ResetCode("ana@dkt.io"), "Abcdef1!", "Abcdef1!"))
	assert.Equal(t, "Abcdef1!", s.api.Password("ana"))

	err = NewPasswordReset(s.auth).Request(ctx, "ghost@dkt.io")
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, ReasonEmailNotFound, rerr.Reason)
}

func TestE2E_ProfileAndPassword(t *testing.T) {
	s := newStack(t)
	s.api.AddUser("ana", "ana@dkt.io", "Old1234!", models.RoleAdmin)
	s.api.AddUser("bob", "bob@dkt.io", "Old1234!")
	ctx := context.Background()
	_, err := s.auth.Login(ctx, "ana", "Old1234!", true)
	require.NoError(t, err)

	require.NoError(t, s.users.UpdateProfile(ctx, models.ProfileUpdate{Username: "ana", Email: "ana@new.io"}))
	profile, err := s.users.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ana@new.io", profile.Email)

	require.NoError(t, s.users.ChangePassword(ctx, "Old1234!", "Abcdef1!"))
	assert.Equal(t, "Abcdef1!", s.api.Password("ana"))

	users, err := s.users.GetUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[1].Username)

	require.NoError(t, s.users.DeleteUser(ctx, users[1].ID))
	users, err = s.users.GetUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
