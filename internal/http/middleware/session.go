package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	// SessionHeader carries the kiosk session ID on every request.
	SessionHeader = "X-Kiosk-Session"
	sessionCookie = "kiosk_session"
)

const sessionIDKey contextKey = "kioskSession"

// KioskSession resolves the request's kiosk session ID from the header or
// cookie, minting a fresh one when neither is present. The ID is echoed back
// on both so either kind of client can hold on to it.
func KioskSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := r.Header.Get(SessionHeader)
		if sid == "" {
			if cookie, err := r.Cookie(sessionCookie); err == nil {
				sid = cookie.Value
			}
		}
		if sid == "" {
			sid = uuid.NewString()
		}

		w.Header().Set(SessionHeader, sid)
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sid,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		ctx := context.WithValue(r.Context(), sessionIDKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionIDFromContext returns the kiosk session ID resolved by KioskSession.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sessionIDKey).(string)
	return sid, ok
}
