// Package session keeps per-browser console state for the admin app.
package session

import "time"

const (
	// CookieName is the name of the cookie that carries the console session ID.
	CookieName = "storyshelf_console"

	// CookiePath ensures the cookie is sent with all requests.
	CookiePath = "/"

	// DefaultTTL is how long an idle console session is kept.
	DefaultTTL = 30 * time.Minute

	// DefaultSweepInterval is how often expired sessions are removed.
	DefaultSweepInterval = time.Minute

	// DefaultMaxSessions caps the number of live console sessions.
	DefaultMaxSessions = 1000
)
