package client

import "net/url"

// Backend REST paths, relative to the configured base URL.
const (
	PathRegister         = "/api/Auth/register"
	PathLogin            = "/api/Auth/login"
	PathRefreshToken     = "/api/Auth/refresh-token"
	PathRequestResetCode = "/api/Auth/request-reset-code"
	PathResetPassword    = "/api/Auth/reset-password"
	PathLogout           = "/api/Auth/logout"
	PathAuthEndpoint     = "/api/Auth/Auth-endpoint"
	PathAdminEndpoint    = "/api/Auth/Admin-endpoint"

	PathPosts = "/api/Community/posts"

	PathUpdateUser     = "/api/User/update-user"
	PathGetUsers       = "/api/User/get-users"
	PathDeleteUsers    = "/api/User/delete-users"
	PathChangePassword = "/api/User/change-password"
	PathProfile        = "/api/User/profile"
)

// anonymousPaths establish or recover a session. A 401 from them means bad
// input, not an expired token, so it never starts a token refresh.
var anonymousPaths = map[string]struct{}{
	PathRegister:         {},
	PathLogin:            {},
	PathRefreshToken:     {},
	PathRequestResetCode: {},
	PathResetPassword:    {},
}

func postPath(id string) string {
	return PathPosts + "/" + url.PathEscape(id)
}

func postRepliesPath(id string) string {
	return postPath(id) + "/replies"
}

func postLikePath(id string) string {
	return postPath(id) + "/like"
}
