// ordertrackd exposes the order aggregate over HTTP.
//
// By default it runs on an in-memory event store. Pass -postgres to persist
// the log, and -kafka-brokers to publish appended events for downstream
// consumers.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trackpay/ordertrack"
	"github.com/trackpay/ordertrack/domain/order"
	"github.com/trackpay/ordertrack/eventstore"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	postgresDSN := flag.String("postgres", "", "PostgreSQL DSN; uses the in-memory store when empty")
	kafkaBrokers := flag.String("kafka-brokers", "", "comma-separated Kafka brokers; publishing is disabled when empty")
	kafkaTopic := flag.String("kafka-topic", "ordertrack.events", "Kafka topic for appended events")
	flag.Parse()

	logger := ordertrack.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	store, err := buildStore(*postgresDSN, *kafkaBrokers, *kafkaTopic, logger)
	if err != nil {
		logger.Error("Cannot build event store", err, nil)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()

	store, err = eventstore.NewPrometheusMetricsBuilder(registry, "ordertrack", "eventstore").DecorateEventStore(store)
	if err != nil {
		logger.Error("Cannot decorate event store with metrics", err, nil)
		os.Exit(1)
	}

	h := handlers{
		repo:   order.NewRepository(store, logger),
		logger: logger,
	}

	r := chi.NewRouter()
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{orderID}", h.getOrder)
	r.Post("/orders/{orderID}/pay", h.payOrder)
	r.Post("/orders/{orderID}/payments", h.receivePayment)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	logger.Info("Listening", ordertrack.LogFields{"addr": *addr})

	if err := http.ListenAndServe(*addr, r); err != nil {
		logger.Error("Server stopped", err, nil)
		os.Exit(1)
	}
}

func buildStore(postgresDSN, kafkaBrokers, kafkaTopic string, logger ordertrack.LoggerAdapter) (eventstore.EventStore, error) {
	var store eventstore.EventStore = eventstore.NewMemory()

	if postgresDSN != "" {
		db, err := sql.Open("postgres", postgresDSN)
		if err != nil {
			return nil, err
		}

		sqlStore := eventstore.NewSQL(db)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := sqlStore.InitializeSchema(ctx); err != nil {
			return nil, err
		}

		store = sqlStore
	}

	if kafkaBrokers != "" {
		return eventstore.NewSimpleSyncKafka(store, strings.Split(kafkaBrokers, ","), kafkaTopic, logger)
	}

	return store, nil
}
