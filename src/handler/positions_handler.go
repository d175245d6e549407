package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"tradingcore/src/model"
)

type positionOpener interface {
	Open(ctx context.Context, proposed *model.Position) (*model.Position, error)
}

type positionCloser interface {
	Close(ctx context.Context, positionID string, userID uint) (*model.Position, error)
}

type positionLister interface {
	ListByUser(ctx context.Context, userID uint) ([]model.Position, error)
}

type openPositionRequest struct {
	UserID     uint            `json:"user_id"`
	Symbol     string          `json:"symbol"`
	Side       model.Direction `json:"side"`
	EntryPrice float64         `json:"entry_price"`
	Quantity   float64         `json:"quantity"`
	StopLoss   *float64        `json:"stop_loss,omitempty"`
	TakeProfit *float64        `json:"take_profit,omitempty"`
	Confidence float64         `json:"confidence"`
	ModelName  string          `json:"model_name"`
}

type rejectionResponse struct {
	Error     string  `json:"error"`
	Reason    string  `json:"reason"`
	RiskScore float64 `json:"risk_score"`
}

// OpenPositionHandler proposes a new position to the engine.
func OpenPositionHandler(eng positionOpener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req openPositionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		position, err := eng.Open(r.Context(), &model.Position{
			UserID:     req.UserID,
			Symbol:     req.Symbol,
			Side:       req.Side,
			Status:     model.PositionStatusPending,
			EntryPrice: req.EntryPrice,
			Quantity:   req.Quantity,
			StopLoss:   req.StopLoss,
			TakeProfit: req.TakeProfit,
			Confidence: req.Confidence,
			ModelName:  req.ModelName,
		})
		if err != nil {
			writePositionError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, position)
	}
}

// ClosePositionHandler closes an open position at the current market
// price.
func ClosePositionHandler(eng positionCloser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		positionID := chi.URLParam(r, "id")

		userID, err := strconv.ParseUint(r.URL.Query().Get("userId"), 10, 64)
		if err != nil {
			http.Error(w, "invalid userId", http.StatusBadRequest)
			return
		}

		position, err := eng.Close(r.Context(), positionID, uint(userID))
		if err != nil {
			writePositionError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, position)
	}
}

// ListPositionsHandler lists a user's positions, open and closed.
func ListPositionsHandler(repo positionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseUint(r.URL.Query().Get("userId"), 10, 64)
		if err != nil {
			http.Error(w, "invalid userId", http.StatusBadRequest)
			return
		}

		positions, err := repo.ListByUser(r.Context(), uint(userID))
		if err != nil {
			logger.WithError(err).Error("failed to list positions")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, positions)
	}
}

func writePositionError(w http.ResponseWriter, err error) {
	var rejection *model.RiskRejectedError

	switch {
	case errors.As(err, &rejection):
		writeJSON(w, http.StatusUnprocessableEntity, rejectionResponse{
			Error:     "risk rejected",
			Reason:    rejection.Reason,
			RiskScore: rejection.RiskScore,
		})
	case errors.Is(err, model.ErrVenueUnavailable):
		http.Error(w, "venue unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, model.ErrDataUnavailable):
		http.Error(w, "market data unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, model.ErrNotFound):
		http.Error(w, "position not found", http.StatusNotFound)
	default:
		logger.WithError(err).Error("position operation failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}
