package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"tradingcore/src/model"
)

type signalGenerator interface {
	Generate(ctx context.Context, symbol string) (*model.Signal, error)
	Active(symbol string) []model.Signal
}

// GenerateSignalHandler runs the ensemble for one instrument.
func GenerateSignalHandler(gen signalGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := chi.URLParam(r, "symbol")

		sig, err := gen.Generate(r.Context(), symbol)
		if err != nil {
			if errors.Is(err, model.ErrDataUnavailable) {
				http.Error(w, "market data unavailable", http.StatusServiceUnavailable)
				return
			}
			logger.WithError(err).WithField("symbol", symbol).Error("signal generation failed")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, sig)
	}
}

// ListSignalsHandler returns the live, non-expired signals for an
// instrument.
func ListSignalsHandler(gen signalGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := chi.URLParam(r, "symbol")
		writeJSON(w, http.StatusOK, gen.Active(symbol))
	}
}
