package web

import (
	"net/http"
	"unicode/utf8"

	"github.com/gorilla/securecookie"

	logx "github.com/ia-assistant/server/pkg/logger"
)

const (
	flashCookie = "flash"

	// Keeps the encoded cookie under securecookie's 4096 byte limit.
	maxFlashMessage = 1024
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

// flashes keeps pending messages in a signed cookie.
type flashes struct {
	codec *securecookie.SecureCookie
}

func newFlashes(secret string) *flashes {
	return &flashes{codec: securecookie.New([]byte(secret), nil)}
}

func (f *flashes) add(w http.ResponseWriter, r *http.Request, category, message string) {
	pending := f.read(r)
	pending = append(pending, Flash{Category: category, Message: truncateFlash(message)})

	value, err := f.codec.Encode(flashCookie, pending)
	if err != nil {
		logx.Warn().Err(err).Msg("failed to encode flash cookie")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// pop returns the pending messages and clears the cookie.
func (f *flashes) pop(w http.ResponseWriter, r *http.Request) []Flash {
	pending := f.read(r)
	if len(pending) > 0 {
		http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	}
	return pending
}

func (f *flashes) read(r *http.Request) []Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	var pending []Flash
	if err := f.codec.Decode(flashCookie, c.Value, &pending); err != nil {
		logx.Debug().Err(err).Msg("ignoring unreadable flash cookie")
		return nil
	}
	return pending
}

// truncateFlash cuts message to maxFlashMessage bytes on a rune boundary.
func truncateFlash(message string) string {
	if len(message) <= maxFlashMessage {
		return message
	}
	cut := maxFlashMessage
	for cut > 0 && !utf8.RuneStart(message[cut]) {
		cut--
	}
	return message[:cut] + "..."
}
