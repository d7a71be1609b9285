package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-backend/api/responses"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"

	// DefaultIdempotencyTTL covers cart and blog writes.
	DefaultIdempotencyTTL = 24 * time.Hour
	// CheckoutIdempotencyTTL outlives any payment session a submit can open.
	CheckoutIdempotencyTTL = 7 * 24 * time.Hour

	// claimTTL bounds how long a crashed request can hold its key.
	claimTTL         = 2 * time.Minute
	maxIdempotentKey = 255
)

// idempotencyRecord is either an in-flight claim or a finished response.
type idempotencyRecord struct {
	Pending     bool   `json:"pending,omitempty"`
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Location    string `json:"location,omitempty"`
	Body        string `json:"body,omitempty"`
}

// Idempotency replays the first response for a repeated Idempotency-Key.
// The key is claimed before the handler runs, so a concurrent duplicate is
// refused instead of executing twice. Requests without the header pass
// through; a nil store disables the guard.
type Idempotency struct {
	store pkgredis.IdempotencyStore
	logg  *logger.Logger
}

func NewIdempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) *Idempotency {
	return &Idempotency{store: store, logg: logg}
}

// Require guards a route, keeping its finished response for ttl.
func (i *Idempotency) Require(ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if i == nil || i.store == nil || clientKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			if len(clientKey) > maxIdempotentKey {
				responses.WriteError(ctx, i.logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be at most %d characters", IdempotencyHeader, maxIdempotentKey))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, i.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			hash := requestHash(r, body)
			key := i.store.IdempotencyKey(idempotencyScope(r), clientKey)

			claim, _ := json.Marshal(idempotencyRecord{Pending: true, RequestHash: hash})
			claimed, err := i.store.SetNX(ctx, key, string(claim), claimTTL)
			if err != nil {
				responses.WriteError(ctx, i.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				i.replay(w, r, key, hash)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			defer func() {
				if rec := recover(); rec != nil {
					i.release(r, key)
					panic(rec)
				}
			}()
			next.ServeHTTP(capture, r)

			if capture.statusCode() >= http.StatusInternalServerError {
				i.release(r, key)
				return
			}
			i.record(r, key, ttl, idempotencyRecord{
				RequestHash: hash,
				Status:      capture.statusCode(),
				ContentType: capture.Header().Get("Content-Type"),
				Location:    capture.Header().Get("Location"),
				Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
			})
		})
	}
}

func (i *Idempotency) replay(w http.ResponseWriter, r *http.Request, key, hash string) {
	ctx := r.Context()
	stored, err := i.store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		responses.WriteError(ctx, i.logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this idempotency key is still in progress"))
		return
	}
	if err != nil {
		responses.WriteError(ctx, i.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotency record"))
		return
	}

	var rec idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &rec); err != nil {
		responses.WriteError(ctx, i.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	switch {
	case rec.RequestHash != hash:
		responses.WriteError(ctx, i.logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
	case rec.Pending:
		responses.WriteError(ctx, i.logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this idempotency key is still in progress"))
	default:
		if rec.ContentType != "" {
			w.Header().Set("Content-Type", rec.ContentType)
		}
		if rec.Location != "" {
			w.Header().Set("Location", rec.Location)
		}
		w.Header().Set("Idempotent-Replayed", "true")
		w.WriteHeader(rec.Status)
		if body, err := base64.StdEncoding.DecodeString(rec.Body); err == nil {
			_, _ = w.Write(body)
		}
	}
}

// record swaps the claim for the finished response.
func (i *Idempotency) record(r *http.Request, key string, ttl time.Duration, rec idempotencyRecord) {
	payload, err := json.Marshal(rec)
	if err == nil {
		err = i.store.Set(r.Context(), key, string(payload), ttl)
	}
	if err != nil && i.logg != nil {
		i.logg.Error(i.logg.WithField(r.Context(), "idempotency_key", key), "store idempotent response", err)
	}
}

// release drops the claim so the client can retry with the same key.
func (i *Idempotency) release(r *http.Request, key string) {
	if err := i.store.Del(r.Context(), key); err != nil && i.logg != nil {
		i.logg.Error(i.logg.WithField(r.Context(), "idempotency_key", key), "release idempotency key", err)
	}
}

// idempotencyScope keeps keys from colliding across callers and routes.
func idempotencyScope(r *http.Request) string {
	var username string
	if principal := pkgAuth.PrincipalFromContext(r.Context()); principal != nil {
		username = principal.Username
	}
	return strings.Join([]string{username, SessionIDFromContext(r.Context()), r.Method, r.URL.Path}, "|")
}

func requestHash(r *http.Request, body []byte) string {
	h := sha256.New()
	h.Write([]byte(r.URL.RawQuery))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
