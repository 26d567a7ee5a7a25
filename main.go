package main

import (
	"context"
	"expvar"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"stripehooks/internal"
	"stripehooks/webhook"
)

func main() {
	logger := internal.NewLogger("server")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	config, err := internal.LoadConfig(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := config.Validate(); err != nil {
		logger.Fatalf("config: %v", err)
	}

	ruleEngine, err := internal.NewRuleEngine(config.Rules, internal.NewLogger("rules"))
	if err != nil {
		logger.Fatalf("compile rules: %v", err)
	}

	handler := webhook.NewStripeHandler(
		internal.NewVerifier(config.Stripe.WebhookSecret, time.Duration(config.Stripe.ToleranceSeconds)*time.Second),
		internal.NewFilter(config.Filters.Allow, config.Filters.Deny),
		ruleEngine,
		internal.NewNotifier(config.Slack.WebhookURL, time.Duration(config.Slack.TimeoutMS)*time.Millisecond, internal.NewLogger("slack")),
		internal.NewLogger("stripe"),
		config.Server.MaxBodyBytes,
	)

	mux := http.NewServeMux()
	mux.Handle(config.Stripe.Path, internal.NewRateLimitHandler(
		handler,
		config.Server.RateLimitRPS,
		config.Server.RateLimitBurst,
		time.Minute,
	))
	logger.Printf("stripe webhook enabled on %s", config.Stripe.Path)

	if config.Server.MetricsEnabled {
		mux.Handle(config.Server.MetricsPath, expvar.Handler())
		logger.Printf("metrics enabled on %s", config.Server.MetricsPath)
	}

	addr := ":" + strconv.Itoa(config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       time.Duration(config.Server.ReadTimeoutMS) * time.Millisecond,
		WriteTimeout:      time.Duration(config.Server.WriteTimeoutMS) * time.Millisecond,
		IdleTimeout:       time.Duration(config.Server.IdleTimeoutMS) * time.Millisecond,
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Printf("listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("listen: %v", err)
		}
	}()

	<-shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
}
