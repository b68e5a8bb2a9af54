// Package services holds the application facades the CLI drives: auth,
// community and user. Each facade checks cheap preconditions locally and
// otherwise delegates to client.Client, returning its *client.APIError
// unchanged. Only the auth facade writes the session.
package services
