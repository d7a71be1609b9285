// Package stripe holds the validated Stripe credentials for one environment
// and the API client built from them.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

// Each gateway call is made once; a failed submit is retried by the shopper
// under the same stored idempotency key.
const maxNetworkRetries = 0

var errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)

// keyRule lists the accepted prefixes of one credential per environment.
type keyRule struct {
	name     string
	prefixes map[string][]string
}

var (
	secretKeyRule = keyRule{
		name: "secret key",
		prefixes: map[string][]string{
			testEnv: {"sk_test_", "rk_test_"},
			liveEnv: {"sk_live_", "rk_live_"},
		},
	}
	publishableKeyRule = keyRule{
		name: "publishable key",
		prefixes: map[string][]string{
			testEnv: {"pk_test_"},
			liveEnv: {"pk_live_"},
		},
	}
)

func (r keyRule) check(env, key string) error {
	if key == "" {
		return fmt.Errorf("stripe %s is required", r.name)
	}
	for _, p := range r.prefixes[env] {
		if strings.HasPrefix(key, p) {
			return nil
		}
	}
	return fmt.Errorf("stripe %s does not match environment %q (want %s)", r.name, env, strings.Join(r.prefixes[env], " or "))
}

// Client carries the Stripe credentials for one environment.
type Client struct {
	api            *stripe.Client
	environment    string
	publishableKey string
	signingSecret  string
}

// NewClient validates the key pair against the configured environment so a
// live key never runs against a test deployment or the reverse. The webhook
// signing secret is optional; without it the webhook endpoint refuses events.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env := cfg.Environment()
	if env != testEnv && env != liveEnv {
		return nil, errInvalidStripeEnv
	}

	secretKey := strings.TrimSpace(cfg.SecretKey)
	publishableKey := strings.TrimSpace(cfg.PublishableKey)
	signingSecret := strings.TrimSpace(cfg.WebhookSecret)
	if err := errors.Join(
		secretKeyRule.check(env, secretKey),
		publishableKeyRule.check(env, publishableKey),
	); err != nil {
		return nil, err
	}
	if signingSecret != "" && !strings.HasPrefix(signingSecret, "whsec_") {
		return nil, errors.New("stripe webhook secret must start with whsec_")
	}

	backends := stripe.NewBackendsWithConfig(&stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(maxNetworkRetries),
	})
	if apiURL := strings.TrimSpace(cfg.APIURL); apiURL != "" {
		backends.API = stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			MaxNetworkRetries: stripe.Int64(maxNetworkRetries),
			URL:               stripe.String(apiURL),
		})
	}
	client := &Client{
		api:            stripe.NewClient(secretKey, stripe.WithBackends(backends)),
		environment:    env,
		publishableKey: publishableKey,
		signingSecret:  signingSecret,
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{"stripe_env": env, "stripe_webhooks": client.WebhooksEnabled()})
		logg.Info(ctx, "stripe client initialized")
		if !client.WebhooksEnabled() {
			logg.Warn(ctx, "stripe webhook secret not configured; webhook endpoint disabled")
		}
	}
	return client, nil
}

// API returns the underlying Stripe API client.
func (c *Client) API() *stripe.Client {
	if c == nil {
		return nil
	}
	return c.api
}

// Environment reports "test" or "live".
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// PublishableKey is safe to hand to browsers.
func (c *Client) PublishableKey() string {
	if c == nil {
		return ""
	}
	return c.publishableKey
}

func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}

func (c *Client) WebhooksEnabled() bool {
	return c.SigningSecret() != ""
}
