package pricesync

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"lagoon/core"
	"lagoon/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
)

// Sync pulls signed tickers from the price feed, verifies the aggregated
// signer signature and stores ticks that are newer than what we hold.
type Sync struct {
	worker.TickWorker
	db      *db.DB
	signers core.IOracleSignerStore
	prices  core.IPriceStore
	tokens  core.ITokenStore
	oracle  core.IPriceOracleService
	system  *core.System
}

// New new price sync worker
func New(
	db *db.DB,
	signers core.IOracleSignerStore,
	prices core.IPriceStore,
	tokens core.ITokenStore,
	oracle core.IPriceOracleService,
	system *core.System,
	interval time.Duration,
) *Sync {
	return &Sync{
		TickWorker: worker.TickWorker{
			Delay:    interval,
			ErrDelay: interval,
		},
		db:      db,
		signers: signers,
		prices:  prices,
		tokens:  tokens,
		oracle:  oracle,
		system:  system,
	}
}

// Run run worker
func (w *Sync) Run(ctx context.Context) error {
	return w.StartTick(ctx, func(ctx context.Context) error {
		return w.onWork(ctx)
	})
}

func (w *Sync) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "pricesync")

	assets, err := w.listAssets(ctx)
	if err != nil {
		log.WithError(err).Errorln("list assets")
		return err
	}

	if len(assets) == 0 {
		return errors.New("EOF")
	}

	signers, err := w.listSigners(ctx)
	if err != nil {
		log.WithError(err).Errorln("list signers")
		return err
	}

	if len(signers) == 0 {
		log.Warningln("no oracle signers registered, skip")
		return errors.New("EOF")
	}

	tickers, err := w.oracle.PullPriceTickers(ctx, time.Now())
	if err != nil {
		log.WithError(err).Errorln("pull price tickers")
		return err
	}

	var updated int
	for _, ticker := range tickers {
		if !assets[ticker.AssetID] {
			continue
		}

		if !ticker.Price.IsPositive() {
			log.Errorln("invalid ticker price:", ticker.Symbol, ticker.Price)
			continue
		}

		if !ticker.Verify(signers, w.system.PriceThreshold) {
			log.Errorln("ticker signature verify failed:", ticker.Symbol)
			continue
		}

		ok, err := w.saveTick(ctx, ticker)
		if err != nil {
			log.WithError(err).Errorln("save tick:", ticker.Symbol)
			return err
		}

		if ok {
			updated++
		}
	}

	if updated > 0 {
		log.Infof("updated %d price ticks", updated)
	}

	return nil
}

// saveTick stores the ticker when it is newer than the held tick. Feed
// reorderings and replays never move a price backwards.
func (w *Sync) saveTick(ctx context.Context, ticker *core.PriceData) (bool, error) {
	tickTime := time.Unix(ticker.Timestamp, 0)

	existing, err := w.prices.Find(ctx, ticker.AssetID)
	if err != nil {
		if err != core.ErrPriceNotFound {
			return false, err
		}
	} else if !existing.Time.Before(tickTime) {
		return false, nil
	}

	content, _ := json.Marshal(map[string]interface{}{
		"symbol":    ticker.Symbol,
		"price":     ticker.Price,
		"timestamp": ticker.Timestamp,
		"mask":      ticker.Signature.Mask,
	})

	tick := &core.PriceTick{
		AssetID:  ticker.AssetID,
		Symbol:   ticker.Symbol,
		PriceUSD: ticker.Price,
		Time:     tickTime,
		Content:  types.JSONText(content),
	}

	if err := w.db.Tx(func(tx *db.DB) error {
		return w.prices.Save(ctx, tx, tick)
	}); err != nil {
		return false, err
	}

	return true, nil
}

func (w *Sync) listAssets(ctx context.Context) (map[string]bool, error) {
	tokens, err := w.tokens.All(ctx)
	if err != nil {
		return nil, err
	}

	assets := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		assets[token.AssetID] = true
	}

	return assets, nil
}

func (w *Sync) listSigners(ctx context.Context) ([]*core.Signer, error) {
	rows, err := w.signers.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	signers := make([]*core.Signer, 0, len(rows))
	for _, row := range rows {
		signer, err := row.Signer()
		if err != nil {
			return nil, err
		}

		signers = append(signers, signer)
	}

	return signers, nil
}
