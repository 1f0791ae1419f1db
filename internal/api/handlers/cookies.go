package handlers

import (
	"net/http"
	"time"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// sessionCookies sets and clears the two session cookies with one scope so
// a clear always matches an earlier set.
type sessionCookies struct {
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func newSessionCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

func (c sessionCookies) set(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, newSessionCookie(AccessTokenCookie, accessToken, int(c.accessTTL.Seconds())))
	http.SetCookie(w, newSessionCookie(RefreshTokenCookie, refreshToken, int(c.refreshTTL.Seconds())))
}

func (c sessionCookies) clear(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		cookie := newSessionCookie(name, "", -1)
		cookie.Expires = time.Unix(0, 0).UTC()
		http.SetCookie(w, cookie)
	}
}
