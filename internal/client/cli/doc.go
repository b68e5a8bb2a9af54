// Package cli provides the interactive DKT Learn command-line client.
//
// App wires the auth, community and user facades to a read-eval-print loop.
// The session survives restarts: on start the stored session is restored
// and, while it lasts, every command runs as the logged-in user. When the
// HTTP layer gives up renewing an expired token, SessionExpired drops the
// REPL back to the logged-out state.
//
// Commands:
//
//	register, login, forgot, help, exit        always available
//	whoami, logout, access [admin]             logged in
//	posts, show <id>, post, edit <id>,
//	delete <id>, like <id>, reply <id>         logged in
//	profile [edit], passwd, users [delete <id>] logged in
//
// Run blocks until the user exits or input ends.
package cli
