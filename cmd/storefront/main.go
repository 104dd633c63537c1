package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mediastorehq/storefront-go/internal/cart"
	"github.com/mediastorehq/storefront-go/internal/checkout"
	"github.com/mediastorehq/storefront-go/internal/delivery"
	"github.com/mediastorehq/storefront-go/internal/gateway"
	"github.com/mediastorehq/storefront-go/internal/orders"
	"github.com/mediastorehq/storefront-go/pkg/config"
	"github.com/mediastorehq/storefront-go/pkg/logger"
	"github.com/mediastorehq/storefront-go/pkg/metrics"
)

// stdoutNavigator prints the payment URL for the operator to open. The real
// handoff happens in whatever browser context embeds this client.
type stdoutNavigator struct{}

func (stdoutNavigator) Navigate(_ context.Context, url string) error {
	_, err := fmt.Fprintf(os.Stdout, "open payment page: %s\n", url)
	return err
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
	}
	gatewayMetrics := metrics.NewGatewayMetrics(registry)

	client, err := gateway.NewClient(cfg.Gateway, logg, gatewayMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create gateway client", err)
		os.Exit(1)
	}

	cartGW, err := gateway.NewCartGateway(client)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart gateway", err)
		os.Exit(1)
	}
	orderGW, err := gateway.NewOrderGateway(client)
	if err != nil {
		logg.Error(context.Background(), "failed to create order gateway", err)
		os.Exit(1)
	}
	paymentGW, err := gateway.NewPaymentGateway(client)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway", err)
		os.Exit(1)
	}

	calculator, err := delivery.NewCalculator(cartGW, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery calculator", err)
		os.Exit(1)
	}

	cartStore, err := cart.NewStore(cartGW, calculator, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}

	orderStore, err := orders.NewStore(orderGW, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order store", err)
		os.Exit(1)
	}

	orchestrator, err := checkout.NewOrchestrator(checkout.Params{
		Cart:     cartStore,
		Orders:   orderStore,
		Payments: paymentGW,
		Nav:      stdoutNavigator{},
		Payment:  cfg.Payment,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout orchestrator", err)
		os.Exit(1)
	}

	listener, err := checkout.NewReturnListener(cfg.Return, orchestrator, logg, registry)
	if err != nil {
		logg.Error(context.Background(), "failed to create return listener", err)
		os.Exit(1)
	}

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": cfg.Return.Addr,
	})

	if err := cartStore.InitializeSession(ctx); err != nil {
		logg.Warn(ctx, "cart session initialization deferred")
	}

	errs := make(chan error, 1)
	go func() {
		errs <- listener.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	logg.Info(ctx, "storefront client running")

	select {
	case err := <-errs:
		if err != nil {
			logg.Error(ctx, "return listener stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutting down")
		if err := listener.Shutdown(context.Background()); err != nil {
			logg.Error(ctx, "return listener shutdown failed", err)
			os.Exit(1)
		}
	}
}
