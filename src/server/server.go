package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"tradingcore/src/engine"
	"tradingcore/src/handler"
	"tradingcore/src/repository"
	tradesignal "tradingcore/src/signal"
)

// Deps carries the explicitly constructed services the boundary layer
// exposes. Nothing here is a process-wide singleton.
type Deps struct {
	Engine    *engine.Engine
	Ensemble  *tradesignal.Ensemble
	Positions *repository.PositionRepository
}

func StartServer(port string, deps Deps) {
	r := chi.NewRouter()

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("/healthcheck error")
		}
	})

	r.Post("/signals/{symbol}", handler.GenerateSignalHandler(deps.Ensemble))
	r.Get("/signals/{symbol}", handler.ListSignalsHandler(deps.Ensemble))
	r.Post("/positions", handler.OpenPositionHandler(deps.Engine))
	r.Post("/positions/{id}/close", handler.ClosePositionHandler(deps.Engine))
	r.Get("/positions", handler.ListPositionsHandler(deps.Positions))

	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
