package signal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tradingcore/src/model"
)

const ensembleModelName = "heuristic_ensemble_v1"

// SnapshotSource supplies the snapshot an ensemble evaluates. A
// (nil, nil) return means no data for the instrument.
type SnapshotSource interface {
	Get(ctx context.Context, symbol string) (*model.MarketSnapshot, error)
}

// Ensemble turns one market snapshot into one trade proposal by
// weighted combination of the fixed sub-strategy set. It also keeps
// the registry of live signals until they expire.
type Ensemble struct {
	logger     *logrus.Entry
	source     SnapshotSource
	strategies []SubStrategy
	cfg        Config
	now        func() time.Time
	newID      func() string

	mu     sync.RWMutex
	active map[string][]*model.Signal
}

func NewEnsemble(logger *logrus.Entry, source SnapshotSource, cfg Config) *Ensemble {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Ensemble{
		logger:     logger,
		source:     source,
		strategies: defaultStrategies(),
		cfg:        cfg,
		now:        time.Now,
		newID:      uuid.NewString,
		active:     make(map[string][]*model.Signal),
	}
}

// Generate evaluates every sub-strategy against the current snapshot
// and combines them. It returns model.ErrDataUnavailable, and no
// signal, when the snapshot or any required indicator is missing; the
// caller skips that cycle.
func (e *Ensemble) Generate(ctx context.Context, symbol string) (*model.Signal, error) {
	snap, err := e.source.Get(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("snapshot fetch for %s: %w", symbol, err)
	}
	if snap == nil {
		return nil, fmt.Errorf("no snapshot for %s: %w", symbol, model.ErrDataUnavailable)
	}

	votes := make([]Vote, 0, len(e.strategies))
	for _, strat := range e.strategies {
		vote, err := strat.Evaluate(snap)
		if err != nil {
			e.logger.WithFields(map[string]interface{}{
				"symbol":   symbol,
				"strategy": strat.Name,
			}).Debug("sub-strategy skipped, missing indicator")
			return nil, fmt.Errorf("strategy %s on %s: %w", strat.Name, symbol, model.ErrDataUnavailable)
		}
		votes = append(votes, vote)
	}

	direction, confidence, rationale := e.combine(votes)

	now := e.now()
	sig := &model.Signal{
		ID:         e.newID(),
		Symbol:     symbol,
		Direction:  direction,
		Confidence: confidence,
		ModelName:  ensembleModelName,
		// Levels always come from the first sub-strategy's vote, even
		// when it did not vote with the winning side.
		EntryPrice: votes[0].EntryPrice,
		StopLoss:   votes[0].StopLoss,
		TakeProfit: votes[0].TakeProfit,
		Rationale:  rationale,
		CreatedAt:  now,
		ExpiresAt:  now.Add(e.cfg.TTL),
	}

	e.mu.Lock()
	e.active[symbol] = append(e.active[symbol], sig)
	e.mu.Unlock()

	e.logger.WithFields(map[string]interface{}{
		"symbol":     symbol,
		"direction":  direction,
		"confidence": confidence,
	}).Info("signal generated")

	return sig, nil
}

// combine sums weighted confidence per voting side and picks the side
// with strictly greater mass, provided that mass clears the activation
// threshold. Ties and weak masses are HOLD.
func (e *Ensemble) combine(votes []Vote) (model.Direction, float64, string) {
	longMass, shortMass := 0.0, 0.0
	reasons := make([]string, 0, len(votes))

	for i, vote := range votes {
		weight := e.strategies[i].Weight
		switch vote.Direction {
		case model.DirectionLong:
			longMass += vote.Confidence * weight
		case model.DirectionShort:
			shortMass += vote.Confidence * weight
		}
		reasons = append(reasons, fmt.Sprintf("%s: %s", e.strategies[i].Name, vote.Rationale))
	}

	rationale := strings.Join(reasons, "; ")

	switch {
	case longMass > shortMass && longMass > e.cfg.ActivationThreshold:
		return model.DirectionLong, longMass, rationale
	case shortMass > longMass && shortMass > e.cfg.ActivationThreshold:
		return model.DirectionShort, shortMass, rationale
	default:
		return model.DirectionHold, 0, rationale
	}
}

// Active returns the non-expired signals for symbol, newest last.
func (e *Ensemble) Active(symbol string) []model.Signal {
	e.mu.RLock()
	defer e.mu.RUnlock()

	now := e.now()
	out := make([]model.Signal, 0, len(e.active[symbol]))
	for _, sig := range e.active[symbol] {
		if !sig.Expired(now) {
			out = append(out, *sig)
		}
	}
	return out
}

// PruneExpired drops expired signals from the registry. Signals are
// never mutated, only dropped.
func (e *Ensemble) PruneExpired() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	pruned := 0
	for symbol, sigs := range e.active {
		kept := sigs[:0]
		for _, sig := range sigs {
			if sig.Expired(now) {
				pruned++
				continue
			}
			kept = append(kept, sig)
		}
		if len(kept) == 0 {
			delete(e.active, symbol)
			continue
		}
		e.active[symbol] = kept
	}

	if pruned > 0 {
		e.logger.WithField("pruned", pruned).Debug("expired signals dropped")
	}
	return pruned
}
