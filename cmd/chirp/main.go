/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command chirp runs the micro-posting HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/tomoncle/chirp/api"
	"github.com/tomoncle/chirp/auth"
	"github.com/tomoncle/chirp/config"
	"github.com/tomoncle/chirp/database"
	"github.com/tomoncle/chirp/social"
	"github.com/tomoncle/chirp/utils"
)

func main() {
	configPath := flag.String("config", os.Getenv("CHIRP_CONFIG"), "path to a YAML config file")
	flag.Parse()

	logger := utils.NewLogger("MAIN")
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("load config")
	}
	utils.Configure(cfg.Log)

	if err := run(cfg); err != nil {
		logger.WithError(err).Fatal("chirp stopped")
	}
	logger.Info("chirp stopped")
}

func run(cfg *config.Config) error {
	logger := utils.NewLogger("MAIN")
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			logger.WithError(err).Warn("close database")
		}
	}()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("redis ping")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.WithError(err).Warn("redis close")
		}
	}()

	tokens := auth.NewRedisTokenStore(redisClient, cfg.Redis.Prefix, cfg.Redis.TokenTTL)
	users := social.NewUserService(db)
	tweets := social.NewTweetService(db)
	metrics := api.NewMetrics()

	router := api.NewRouter(api.RouterParams{
		Middleware: api.MiddlewareConfig{
			RequestTimeout: cfg.App.RequestTimeout,
			RateLimit:      cfg.App.RateLimit,
			RateWindow:     cfg.App.RateWindow,
			Production:     cfg.IsProduction(),
		},
		Handler: api.NewHandler(auth.NewService(users, tokens), users, tweets),
		Tokens:  tokens,
		Metrics: metrics,
	})

	server := &http.Server{
		Addr:         cfg.App.Addr,
		Handler:      router,
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", cfg.App.Addr).Info("starting http server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
