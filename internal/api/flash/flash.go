// Package flash stores one-time messages in a signed cookie session so they
// survive exactly one redirect.
package flash

import (
	"encoding/gob"
	"fmt"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

// SessionName is the cookie that carries pending messages.
const SessionName = "flash"

// Categories used across the site.
const (
	Success = "success"
	Info    = "info"
	Error   = "error"
)

type Message struct {
	Category string
	Text     string
}

func init() {
	gob.Register(Message{})
}

// Add queues a message for the next rendered page. A cookie that no longer
// decodes (rotated secret, foreign deployment) is replaced.
func Add(c echo.Context, category, text string) error {
	sess, err := session.Get(SessionName, c)
	if sess == nil {
		return fmt.Errorf("flash session: %w", err)
	}
	sess.AddFlash(Message{Category: category, Text: text})
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("save flash: %w", err)
	}
	return nil
}

// Pop returns and clears queued messages. It must run before the response
// body is written because clearing rewrites the cookie.
func Pop(c echo.Context) []Message {
	sess, err := session.Get(SessionName, c)
	if sess == nil {
		return nil
	}
	raw := sess.Flashes()
	// An undecodable cookie yields a fresh session; saving it overwrites the
	// bad cookie so later messages get through.
	if len(raw) == 0 && err == nil {
		return nil
	}
	_ = sess.Save(c.Request(), c.Response())

	out := make([]Message, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(Message); ok {
			out = append(out, m)
		}
	}
	return out
}
