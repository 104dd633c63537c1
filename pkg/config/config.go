package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every storefront environment variable.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App     AppConfig
	Gateway GatewayConfig
	Payment PaymentConfig
	Return  ReturnConfig
	Metrics MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Gateway.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// GatewayConfig points the typed gateways at the storefront backend.
type GatewayConfig struct {
	BaseURL   string        `envconfig:"STOREFRONT_GATEWAY_BASE_URL" required:"true"`
	APIKey    string        `envconfig:"STOREFRONT_GATEWAY_API_KEY"`
	Timeout   time.Duration `envconfig:"STOREFRONT_GATEWAY_TIMEOUT" default:"10s"`
	UserAgent string        `envconfig:"STOREFRONT_GATEWAY_USER_AGENT" default:"storefront-go"`
}

func (g GatewayConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(g.BaseURL))
	if err != nil {
		return fmt.Errorf("gateway base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("gateway base url must be http or https, got %q", g.BaseURL)
	}
	if g.Timeout <= 0 {
		return fmt.Errorf("gateway timeout must be positive")
	}
	return nil
}

// PaymentConfig controls the payment handoff request defaults.
type PaymentConfig struct {
	Method            string `envconfig:"STOREFRONT_PAYMENT_METHOD" default:"CREDIT_CARD"`
	OrderInfoTemplate string `envconfig:"STOREFRONT_PAYMENT_ORDER_INFO_TEMPLATE" default:"Payment for media store order %s"`
}

// OrderInfo renders the human-readable payment description for an order.
func (p PaymentConfig) OrderInfo(orderID string) string {
	tpl := p.OrderInfoTemplate
	if !strings.Contains(tpl, "%s") {
		return tpl
	}
	return fmt.Sprintf(tpl, orderID)
}

// ReturnConfig configures the payment-gateway return listener.
type ReturnConfig struct {
	Addr            string        `envconfig:"STOREFRONT_RETURN_ADDR" default:":8743"`
	Path            string        `envconfig:"STOREFRONT_RETURN_PATH" default:"/checkout/return"`
	ShutdownTimeout time.Duration `envconfig:"STOREFRONT_RETURN_SHUTDOWN_TIMEOUT" default:"5s"`
}

type MetricsConfig struct {
	Enabled bool `envconfig:"STOREFRONT_METRICS_ENABLED" default:"false"`
}
