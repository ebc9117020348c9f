package domain

import "time"

// Session is a signed identity token handed to the browser after login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	// Remember marks a session that outlives the browser (persistent cookie).
	Remember bool
}
