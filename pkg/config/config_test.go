package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STOREFRONT_GATEWAY_BASE_URL", "https://api.mediastore.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.True(t, cfg.App.IsDev())
	assert.Equal(t, 10*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "CREDIT_CARD", cfg.Payment.Method)
	assert.Equal(t, "/checkout/return", cfg.Return.Path)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadRequiresBaseURL(t *testing.T) {
	t.Setenv("STOREFRONT_GATEWAY_BASE_URL", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsNonHTTPBaseURL(t *testing.T) {
	t.Setenv("STOREFRONT_GATEWAY_BASE_URL", "ftp://api.mediastore.test")

	_, err := Load()
	require.Error(t, err)
}

func TestOrderInfoTemplate(t *testing.T) {
	p := PaymentConfig{OrderInfoTemplate: "Payment for media store order %s"}
	assert.Equal(t, "Payment for media store order ORD123", p.OrderInfo("ORD123"))

	fixed := PaymentConfig{OrderInfoTemplate: "Storefront payment"}
	assert.Equal(t, "Storefront payment", fixed.OrderInfo("ORD123"))
}
