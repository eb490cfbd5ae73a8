package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	adminhandlers "friendsmarket/handlers/admin"
	"friendsmarket/handlers/bets"
	"friendsmarket/handlers/markets"
	"friendsmarket/handlers/payouts"
	"friendsmarket/handlers/positions"
	"friendsmarket/handlers/users"
	"friendsmarket/logging"
	"friendsmarket/middleware"
	"friendsmarket/migration"
	"friendsmarket/seed"
	"friendsmarket/setup"
	"friendsmarket/util"
)

func main() {
	configPath := flag.String("config", "setup/setup.yaml", "path to setup.yaml")
	seedDemo := flag.Bool("seed", false, "populate the database with demo data and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := setup.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.New(cfg)

	db, err := util.OpenDB(cfg.Server.DatabaseURL)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := migration.MigrateDB(db); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	if *seedDemo {
		if err := seed.Run(db, cfg, logger, 8, 4, 40); err != nil {
			logger.Error("seeding failed", "error", err)
			os.Exit(1)
		}
		return
	}

	limiter := middleware.NewBetRateLimiter(cfg.Server.BetsPerMinute)

	r := mux.NewRouter()
	v0 := r.PathPrefix("/v0").Subrouter()

	v0.HandleFunc("/auth/login", users.LoginHandler(db, cfg)).Methods(http.MethodPost)
	v0.HandleFunc("/users", users.CreateUserHandler(db, cfg)).Methods(http.MethodPost)
	v0.HandleFunc("/users", users.ListUsersHandler(db)).Methods(http.MethodGet)
	v0.HandleFunc("/users/{id}", users.GetUserHandler(db)).Methods(http.MethodGet)
	v0.HandleFunc("/users/{id}/deposit", users.DepositHandler(db, cfg)).Methods(http.MethodPost)
	v0.HandleFunc("/users/{id}/ledger", users.UserLedgerHandler(db)).Methods(http.MethodGet)
	v0.HandleFunc("/users/{id}/positions", positions.UserPositionsHandler(db)).Methods(http.MethodGet)

	v0.HandleFunc("/markets", markets.CreateMarketHandler(db, cfg)).Methods(http.MethodPost)
	v0.HandleFunc("/markets", markets.ListMarketsHandler(db, cfg)).Methods(http.MethodGet)
	v0.HandleFunc("/markets/{id}", markets.GetMarketHandler(db, cfg)).Methods(http.MethodGet)
	v0.HandleFunc("/markets/{id}", markets.DeleteMarketHandler(db, cfg)).Methods(http.MethodDelete)
	v0.HandleFunc("/markets/{id}/bet", bets.PlaceBetHandler(db, cfg, limiter)).Methods(http.MethodPost)
	v0.HandleFunc("/markets/{id}/preview", bets.PreviewHandler(db, cfg)).Methods(http.MethodGet)
	v0.HandleFunc("/markets/{id}/pending", markets.MarkPendingHandler(db, cfg)).Methods(http.MethodPost)
	v0.HandleFunc("/markets/{id}/resolve", payouts.ResolveMarketHandler(db, cfg)).Methods(http.MethodPost)

	v0.HandleFunc("/admin/reset", adminhandlers.ResetHandler(db, cfg)).Methods(http.MethodPost)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)

	logger.Info("listening", "port", cfg.Server.Port)
	if err := http.ListenAndServe(":"+cfg.Server.Port, handler); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
