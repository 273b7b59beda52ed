package regime

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"TrendSentry/internal/model"
	"TrendSentry/internal/store"
)

// Momentum adjustment bounds. A streak of identical classifications nudges
// the fresh one: aggressive for BULL streaks, defensive for BEAR streaks.
// Bounds match the documented advisory parameter ranges.
const (
	streakLookback = 4
	streakTrigger  = 3

	buyThresholdStep  = 10
	bullCapitalStep   = 10
	bearCapitalStep   = 15
	minBuyThreshold   = 40
	maxBuyThreshold   = 70
	minCapitalPercent = 40
	maxCapitalPercent = 100
)

// Cache wraps the advisory with momentum adjustment and a persistence-backed
// fallback chain: fresh call, then last persisted classification, then a
// hardcoded default. Classify never fails.
type Cache struct {
	advisory Advisory
	store    store.Store
	timeout  time.Duration
	now      func() time.Time
}

// NewCache builds a Cache. now is injected so streak accumulation can be
// simulated deterministically in tests.
func NewCache(advisory Advisory, st store.Store, timeout time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{advisory: advisory, store: st, timeout: timeout, now: now}
}

// Classify produces the cycle's RegimeClassification. The Source field
// records which link of the fallback chain succeeded.
func (c *Cache) Classify(ctx context.Context, actx AdvisoryContext) model.RegimeClassification {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	fresh, err := c.advisory.Classify(callCtx, actx)
	if err == nil {
		fresh.Source = model.SourceFresh
		fresh.CreatedAt = c.now()
		fresh = c.applyMomentum(fresh)
		if saveErr := c.store.SaveRegimeClassification(fresh); saveErr != nil {
			log.Error().Err(saveErr).Msg("persist regime classification")
		}
		log.Info().
			Str("regime", string(fresh.Regime)).
			Float64("buy_threshold", fresh.BuyThreshold).
			Float64("capital_percent", fresh.CapitalPercent).
			Str("source", string(fresh.Source)).
			Msg("regime classified")
		return fresh
	}
	log.Warn().Err(err).Msg("advisory call failed, falling back")

	cached, cacheErr := c.store.LatestRegimeClassifications(1)
	if cacheErr == nil && len(cached) > 0 {
		cls := cached[0]
		cls.Source = model.SourceCached
		log.Info().Str("regime", string(cls.Regime)).Msg("using cached regime classification")
		return cls
	}
	if cacheErr != nil {
		log.Error().Err(cacheErr).Msg("regime cache lookup failed")
	}

	log.Warn().Msg("no cached regime available, using default")
	return model.DefaultClassification(c.now())
}

// applyMomentum counts how many consecutive prior classifications share the
// fresh regime, walking backward through the store and stopping at the first
// mismatch or after streakLookback entries. A streak of streakTrigger or
// more triggers the adjustment. Single noisy classifications therefore never
// move thresholds, but an established trend does.
func (c *Cache) applyMomentum(fresh model.RegimeClassification) model.RegimeClassification {
	prior, err := c.store.LatestRegimeClassifications(streakLookback)
	if err != nil {
		log.Warn().Err(err).Msg("momentum lookback failed, skipping adjustment")
		return fresh
	}

	streak := 0
	for _, p := range prior {
		if p.Regime != fresh.Regime {
			break
		}
		streak++
	}
	if streak < streakTrigger {
		return fresh
	}

	switch fresh.Regime {
	case model.RegimeBull:
		fresh.BuyThreshold = clamp(fresh.BuyThreshold-buyThresholdStep, minBuyThreshold, maxBuyThreshold)
		fresh.CapitalPercent = clamp(fresh.CapitalPercent+bullCapitalStep, minCapitalPercent, maxCapitalPercent)
		fresh.Reasoning = fmt.Sprintf("%s (momentum: %d-cycle BULL streak, thresholds eased)", fresh.Reasoning, streak)
	case model.RegimeBear:
		fresh.BuyThreshold = clamp(fresh.BuyThreshold+buyThresholdStep, minBuyThreshold, maxBuyThreshold)
		fresh.CapitalPercent = clamp(fresh.CapitalPercent-bearCapitalStep, minCapitalPercent, maxCapitalPercent)
		fresh.Reasoning = fmt.Sprintf("%s (momentum: %d-cycle BEAR streak, thresholds tightened)", fresh.Reasoning, streak)
	}
	return fresh
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
