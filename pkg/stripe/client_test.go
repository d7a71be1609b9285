package stripe

import (
	"context"
	"strings"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

func TestNewClientAcceptsTestKeys(t *testing.T) {
	client, err := NewClient(context.Background(), config.StripeConfig{
		PublishableKey: "pk_test_abc",
		SecretKey:      "sk_test_abc",
		Env:            "TEST",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Environment() != "test" {
		t.Fatalf("expected test env, got %q", client.Environment())
	}
	if client.PublishableKey() != "pk_test_abc" {
		t.Fatalf("unexpected publishable key %q", client.PublishableKey())
	}
	if client.WebhooksEnabled() {
		t.Fatal("webhooks should be disabled without a signing secret")
	}
}

func TestNewClientRejectsMismatchedKeys(t *testing.T) {
	cases := map[string]config.StripeConfig{
		"live secret in test":      {PublishableKey: "pk_test_abc", SecretKey: "sk_live_abc", Env: "test"},
		"test publishable in live": {PublishableKey: "pk_test_abc", SecretKey: "sk_live_abc", Env: "live"},
		"missing secret":           {PublishableKey: "pk_test_abc", Env: "test"},
		"missing publishable":      {SecretKey: "sk_test_abc", Env: "test"},
		"unknown env":              {PublishableKey: "pk_test_abc", SecretKey: "sk_test_abc", Env: "staging"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewClient(context.Background(), cfg, nil); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewClientReportsBothKeyProblems(t *testing.T) {
	_, err := NewClient(context.Background(), config.StripeConfig{
		PublishableKey: "pk_live_abc",
		SecretKey:      "sk_live_abc",
		Env:            "test",
	}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"secret key", "publishable key"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestNewClientWebhookSecret(t *testing.T) {
	base := config.StripeConfig{PublishableKey: "pk_live_abc", SecretKey: "rk_live_abc", Env: "live"}

	withSecret := base
	withSecret.WebhookSecret = " whsec_abc "
	client, err := NewClient(context.Background(), withSecret, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !client.WebhooksEnabled() || client.SigningSecret() != "whsec_abc" {
		t.Fatalf("expected trimmed signing secret, got %q", client.SigningSecret())
	}
	if client.API() == nil {
		t.Fatal("expected api client")
	}

	bad := base
	bad.WebhookSecret = "sk_live_oops"
	if _, err := NewClient(context.Background(), bad, nil); err == nil {
		t.Fatal("expected a non-whsec signing secret to be rejected")
	}
}

func TestNilClientAccessors(t *testing.T) {
	var client *Client
	if client.API() != nil || client.SigningSecret() != "" || client.WebhooksEnabled() {
		t.Fatal("nil client should expose zero values")
	}
}
