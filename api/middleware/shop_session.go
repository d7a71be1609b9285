package middleware

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/internal/shopsession"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const defaultSessionCookie = "storefront_sid"

// ShopSession reads the anonymous shopping-session cookie, issuing a fresh id
// when it is missing or malformed.
func ShopSession(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	name := cfg.CookieName
	if name == "" {
		name = defaultSessionCookie
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID string
			if cookie, err := r.Cookie(name); err == nil && shopsession.ValidID(cookie.Value) {
				sessionID = cookie.Value
			}
			if sessionID == "" {
				sessionID = shopsession.NewID()
				cookie := &http.Cookie{
					Name:     name,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.SecureCookie,
					SameSite: http.SameSiteLaxMode,
				}
				if cfg.TTL > 0 {
					cookie.MaxAge = int(cfg.TTL.Seconds())
				}
				http.SetCookie(w, cookie)
			}

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
