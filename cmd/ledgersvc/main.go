package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	log "github.com/sirupsen/logrus"
	config "github.com/tableside/poker-services/configs"
	"github.com/tableside/poker-services/internal/comm"
	mongodb "github.com/tableside/poker-services/internal/db"
	"github.com/tableside/poker-services/internal/ledgersvc/archive"
	"github.com/tableside/poker-services/internal/ledgersvc/broker"
	svcconfig "github.com/tableside/poker-services/internal/ledgersvc/config"
	"github.com/tableside/poker-services/internal/ledgersvc/db"
	handlers "github.com/tableside/poker-services/internal/ledgersvc/handlers"
	"github.com/tableside/poker-services/internal/ledgersvc/service"
	"github.com/tableside/poker-services/internal/ledgersvc/store"
	nats "github.com/tableside/poker-services/internal/nats"
)

const SERVICE_NAME = "ledger"

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	cfg := svcconfig.Load()

	// pg connection
	dbpool, err := db.Connect(cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	// optional document store for ended-game summaries
	var summaryStore *archive.SummaryStore
	if cfg.MongoUrl != "" {
		mdb, cancel, err := mongodb.ConnectToDB(cfg.MongoUrl)
		if err != nil {
			log.Fatalf("Failed to connect to mongo: %v", err)
		}
		defer cancel()
		summaryStore = archive.NewSummaryStore(mdb)
		log.Printf("mongo connection established successfully")
	}

	gameLogStore := store.NewGameLogStore(dbpool)
	gameLogService := service.NewGameLogService(gameLogStore)

	gameStore := store.NewGameStore(dbpool, gameLogStore)
	gamePlayerStore := store.NewGamePlayerStore(dbpool, gameLogStore)
	gamePlayerService := service.NewGamePlayerService(gamePlayerStore, gameStore)

	tableStore := store.NewTableStore(dbpool)
	profileStore := store.NewProfileStore(dbpool)
	profileService := service.NewProfileService(profileStore)

	gameService := service.NewGameService(gameStore, gamePlayerStore, tableStore, profileStore, summaryStore)
	leaderboardService := service.NewLeaderboardService(gamePlayerStore)

	// Connect to NATS
	n, err := nats.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// init command broker
	broker := broker.NewBroker(n.Conn,
		gameService, gamePlayerService, gameLogService, leaderboardService, profileService)

	// subscribe to commands from the socket gateway
	sub, err := broker.SubscribeCommands(comm.SubjectLedgerService)
	if err != nil {
		log.Errorf("Error: unable to subscribe to queue %v", err)
		os.Exit(0)
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(gamePlayerService, gameLogService, leaderboardService)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("LEDGER_SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	sub.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
