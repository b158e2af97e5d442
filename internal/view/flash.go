package view

import (
	"net/http"
)

// FlashCookieName is the one-shot message cookie.
const FlashCookieName = "flash"

// Flash names a one-shot message. Only the name travels in the cookie, so a
// client cannot make a page show text of its own choosing.
type Flash string

// Known flashes.
const (
	FlashAccountCreated Flash = "account_created"
)

var flashMessages = map[Flash]string{
	FlashAccountCreated: "Account created, please login",
}

// Message returns the text shown for f, or "" for an unknown flash.
func (f Flash) Message() string {
	return flashMessages[f]
}

// SetFlash queues f for the next rendered page. Unknown flashes are ignored.
func SetFlash(w http.ResponseWriter, f Flash, secure bool) {
	if f.Message() == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    string(f),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash returns the pending message, if any, and clears the cookie.
func PopFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(FlashCookieName)
	if err != nil || c.Value == "" {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return Flash(c.Value).Message()
}
