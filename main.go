package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"devconnect/config"
	"devconnect/database"
	"devconnect/githubapi"
	"devconnect/handlers"
	"devconnect/logger"
	"devconnect/routes"
	"devconnect/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("production").Fatal(err)
	}

	log := logger.New(cfg.Env)
	log.Info("starting devconnect server")

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to MongoDB with retry
	var (
		client *mongo.Client
		db     *mongo.Database
		dbErr  error
	)
	for i := 1; i <= 3; i++ {
		client, db, dbErr = database.Connect(cfg.MongoURI, cfg.DBName)
		if dbErr == nil {
			break
		}
		log.WithField("attempt", i).WithError(dbErr).Warn("mongodb connection failed")
		time.Sleep(2 * time.Second)
	}
	if dbErr != nil {
		log.WithError(dbErr).Fatal("could not connect to mongodb")
	}
	log.Info("mongodb connected")

	stores := store.New(db)
	github := githubapi.NewClient(cfg.GithubClientID, cfg.GithubClientSecret)
	h := handlers.New(stores.Users, stores.Profiles, stores.Posts, github, cfg, log)

	router := routes.SetupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
	if err := database.Disconnect(client); err != nil {
		log.WithError(err).Error("mongodb disconnect failed")
	}

	log.Info("server stopped")
}
