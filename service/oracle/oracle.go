package oracle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lagoon/core"
	"lagoon/pkg/resthttp"

	"github.com/fox-one/pkg/property"
	"github.com/shopspring/decimal"
)

const staleThresholdKey = "oracle_stale_threshold_seconds"

// Config oracle service config
type Config struct {
	EndPoint string
	// StaleThreshold used until an operator stores an override
	StaleThreshold time.Duration
}

type oracleService struct {
	prices     core.IPriceStore
	properties property.Store
	cfg        Config

	mux    sync.RWMutex
	stale  time.Duration
	loaded bool
}

// New new oracle price service
func New(prices core.IPriceStore, properties property.Store, cfg Config) core.IPriceOracleService {
	if cfg.StaleThreshold <= 0 {
		cfg.StaleThreshold = 10 * time.Minute
	}

	return &oracleService{
		prices:     prices,
		properties: properties,
		cfg:        cfg,
	}
}

func (s *oracleService) GetPriceUSD(ctx context.Context, assetID string) (decimal.Decimal, bool, error) {
	tick, err := s.prices.Find(ctx, assetID)
	if err != nil {
		return decimal.Zero, false, err
	}

	if !tick.PriceUSD.IsPositive() {
		return decimal.Zero, false, core.ErrPriceNotFound
	}

	stale := time.Since(tick.Time) > s.StaleThreshold(ctx)
	return tick.PriceUSD, stale, nil
}

func (s *oracleService) SetStaleThreshold(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("stale threshold must be positive, got %s", d)
	}

	if err := s.properties.Save(ctx, staleThresholdKey, int64(d.Seconds())); err != nil {
		return err
	}

	s.mux.Lock()
	s.stale = d
	s.loaded = true
	s.mux.Unlock()

	return nil
}

// StaleThreshold reads the stored override once, then serves from memory.
func (s *oracleService) StaleThreshold(ctx context.Context) time.Duration {
	s.mux.RLock()
	if s.loaded {
		defer s.mux.RUnlock()
		return s.stale
	}
	s.mux.RUnlock()

	s.mux.Lock()
	defer s.mux.Unlock()

	if s.loaded {
		return s.stale
	}

	s.stale = s.cfg.StaleThreshold
	if v, err := s.properties.Get(ctx, staleThresholdKey); err == nil {
		if seconds := v.Int64(); seconds > 0 {
			s.stale = time.Duration(seconds) * time.Second
		}
	}

	s.loaded = true
	return s.stale
}

// PullPriceTickers fetches every signed ticker the feed has at time t.
func (s *oracleService) PullPriceTickers(ctx context.Context, t time.Time) ([]*core.PriceData, error) {
	url := fmt.Sprintf("%s/api/tickers?ts=%d", s.cfg.EndPoint, t.UTC().Unix())
	resp, err := resthttp.Request(ctx).Get(url)
	if err != nil {
		return nil, err
	}

	var tickers []*core.PriceData
	if err := resthttp.ParseResponse(resp, &tickers); err != nil {
		return nil, err
	}

	return tickers, nil
}
