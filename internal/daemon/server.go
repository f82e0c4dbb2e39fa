// Copyright (c) 2026 dotandev
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package daemon serves the parking ledger over HTTP: a JSON-RPC 2.0
// endpoint for every entry point and a small read-only REST surface.
package daemon

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dotandev/parkledger/internal/db"
	"github.com/dotandev/parkledger/internal/logger"
	"github.com/dotandev/parkledger/internal/parking"
)

// Config holds daemon configuration
type Config struct {
	Port string
	// JWTSecret enables bearer token checks on /rpc and /v1 when set.
	JWTSecret string
	// JanitorInterval is how often expired entries are purged. Zero disables
	// the janitor.
	JanitorInterval time.Duration
}

// Server represents the JSON-RPC daemon server
type Server struct {
	cfg    Config
	client *parking.Client
	ledger *Ledger
	echo   *echo.Echo
}

// NewServer wires the routes. journal may be nil.
func NewServer(cfg Config, client *parking.Client, journal *db.Journal) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		client: client,
		ledger: &Ledger{client: client, journal: journal},
	}

	rpcServer := rpc.NewServer()
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json")
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json;charset=UTF-8")
	if err := rpcServer.RegisterService(s.ledger, ServiceName); err != nil {
		return nil, fmt.Errorf("failed to register service: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(requestLogger())

	e.GET("/healthz", s.health)

	protected := []echo.MiddlewareFunc{}
	if cfg.JWTSecret != "" {
		protected = append(protected, JWTAuth(cfg.JWTSecret))
	}
	e.POST("/rpc", echo.WrapHandler(rpcServer), protected...)

	v1 := e.Group("/v1", protected...)
	v1.GET("/config", s.getConfig)
	v1.GET("/plates/:plate", s.getPlate)

	s.echo = e
	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.echo }

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	log := logger.Component("daemon")
	addr := ":" + s.cfg.Port

	errc := make(chan error, 1)
	go func() {
		log.Info("Starting JSON-RPC server", "addr", addr)
		if err := s.echo.Start(addr); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	if s.cfg.JanitorInterval > 0 {
		go s.janitor(ctx, s.cfg.JanitorInterval)
	}

	select {
	case err, ok := <-errc:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down JSON-RPC server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) janitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.purge(ctx)
		}
	}
}

func (s *Server) purge(ctx context.Context) int64 {
	n, err := s.client.Host().Purge(ctx)
	log := logger.Component("daemon")
	if err != nil {
		log.Error("Purge failed", "error", err)
		return 0
	}
	if n > 0 {
		log.Info("Purged expired entries", "count", n)
	}
	return n
}
