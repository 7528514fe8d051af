package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"machinewise/internal/handlers"
	"machinewise/internal/logger"
	"machinewise/internal/metrics"
	"machinewise/internal/mqtt"
	"machinewise/internal/repository"
	"machinewise/internal/server"
	"machinewise/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}
	if lvl := viper.GetString("log.level"); lvl != "" {
		logger.SetLevel(lvl)
	}

	metrics.Init()

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(db)
	services := service.NewService(repos, log)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the broadcast scheduler (timer-driven cycles)
	go services.Broadcaster.Run(ctx, broadcastTick())

	// connect the external reading feed
	feed := startFeed(ctx, services, log)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, feed, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// broadcastTick reads the cycle interval from config, falling back to the
// service default.
func broadcastTick() time.Duration {
	if d := viper.GetDuration("broadcast.interval"); d > 0 {
		return d
	}
	return service.DefaultTick
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "machinewise.db")
		dbPath = "machinewise.db"
	}
	return repository.InitDB(dbPath)
}

// startFeed connects to the MQTT broker and subscribes to all sensor topics.
// A missing broker or failed connect disables the feed; it never stops the
// process.
func startFeed(ctx context.Context, services *service.Service, log *logger.Logger) *mqtt.Client {
	broker := viper.GetString("mqtt.broker")
	if broker == "" {
		log.Infow("mqtt.broker not set; external feed disabled")
		return nil
	}

	clientID := viper.GetString("mqtt.client_id")
	if clientID == "" {
		clientID = "machinewise"
	}
	cfg := mqtt.Config{
		Broker:   broker,
		ClientID: clientID + "_" + uuid.NewString()[:8],
	}

	client, err := mqtt.NewClient(cfg, log)
	if err != nil {
		log.Errorw("mqtt connect failed; external feed disabled", "err", err)
		return nil
	}

	prefix := viper.GetString("mqtt.topic_prefix")
	if prefix == "" {
		prefix = "machinewise/sensors"
	}
	topic := prefix + "/+" // one topic per sensor type
	if err := client.Subscribe(topic, 0, func(topic string, payload []byte) error {
		return services.Feed.HandleMessage(ctx, topic, payload)
	}); err != nil {
		log.Errorw("mqtt subscribe failed; external feed disabled", "topic", topic, "err", err)
		client.Disconnect()
		return nil
	}

	log.Infow("external feed subscribed", "topic", topic)
	return client
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, feed *mqtt.Client, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop the scheduler and close subscriber channels; an in-flight cycle
	// is not awaited
	cancel()

	if feed != nil {
		feed.Disconnect()
	}

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
