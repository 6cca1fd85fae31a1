package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"coin-prices-service/internal/domain/entities"
	"coin-prices-service/internal/domain/errs"
	"coin-prices-service/internal/domain/interfaces"
	"coin-prices-service/internal/infrastructure/logging"
	"coin-prices-service/internal/infrastructure/metrics"
	"coin-prices-service/internal/infrastructure/repositories/cache"
)

const (
	// DefaultCacheTTL is the lifetime of pairs, points and the name index.
	DefaultCacheTTL = 30 * time.Second

	// DefaultParseTimeout bounds a shared parse pass once it no longer
	// follows the context of the caller that started it.
	DefaultParseTimeout = time.Minute
)

// ParseOptions tunes a single parse pass.
type ParseOptions struct {
	// Save writes every built point under prices.<QUOTE>.<COIN>.
	Save bool
}

// PriceAggregator builds coin price points out of the pairs every
// configured exchange reports for a quote coin.
type PriceAggregator struct {
	fetcher    interfaces.Fetcher
	normalizer interfaces.Normalizer
	cache      interfaces.Cache
	endpoints  []entities.EndpointOptions
	ttl        time.Duration

	parseTimeout time.Duration
	group        singleflight.Group
}

// NewPriceAggregator creates an aggregator over the endpoints in the given order.
// The order decides the order of prices inside every point.
func NewPriceAggregator(
	fetcher interfaces.Fetcher,
	normalizer interfaces.Normalizer,
	cache interfaces.Cache,
	endpoints []entities.EndpointOptions,
	ttl time.Duration,
) *PriceAggregator {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &PriceAggregator{
		fetcher:    fetcher,
		normalizer: normalizer,
		cache:      cache,
		endpoints:  append([]entities.EndpointOptions(nil), endpoints...),
		ttl:        ttl,

		parseTimeout: DefaultParseTimeout,
	}
}

// SetParseTimeout changes how long a shared parse pass may run. It must be
// called before the aggregator is used.
func (a *PriceAggregator) SetParseTimeout(timeout time.Duration) {
	if timeout > 0 {
		a.parseTimeout = timeout
	}
}

// ExchangeIDs returns the configured exchange ids in price order.
func (a *PriceAggregator) ExchangeIDs() []string {
	ids := make([]string, len(a.endpoints))
	for i, ep := range a.endpoints {
		ids[i] = ep.ExchangeID
	}
	return ids
}

// Parse runs a saving parse pass. Concurrent calls for the same quote coin
// share one pass, which keeps running when the caller that started it goes
// away; every caller stops waiting when its own context is done.
func (a *PriceAggregator) Parse(ctx context.Context, quoteCoin string) ([]entities.CoinPricePoint, error) {
	results := a.group.DoChan(quoteCoin, func() (interface{}, error) {
		passCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.parseTimeout)
		defer cancel()
		return a.ParseWithOptions(passCtx, quoteCoin, ParseOptions{Save: true})
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}

		points := res.Val.([]entities.CoinPricePoint)
		if res.Shared {
			logging.Debug(ctx, "Joined an in-flight parse", logging.Fields{
				logging.FieldQuoteCoin: quoteCoin,
			})
			return clonePoints(points), nil
		}
		return points, nil
	}
}

// ParseWithOptions fetches, intersects and zips the pairs of every exchange.
func (a *PriceAggregator) ParseWithOptions(ctx context.Context, quoteCoin string, opts ParseOptions) ([]entities.CoinPricePoint, error) {
	start := time.Now()
	log := logging.Aggregation()
	log.ParseStarted(ctx, quoteCoin, a.ExchangeIDs())

	points, err := a.parse(ctx, quoteCoin, opts)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordAggregation(quoteCoin, "error", duration.Seconds(), 0)
		log.ParseFailed(ctx, quoteCoin, err)
		return nil, err
	}

	metrics.RecordAggregation(quoteCoin, "success", duration.Seconds(), len(points))
	log.ParseCompleted(ctx, quoteCoin, len(points), duration)
	return points, nil
}

func (a *PriceAggregator) parse(ctx context.Context, quoteCoin string, opts ParseOptions) ([]entities.CoinPricePoint, error) {
	if len(a.endpoints) == 0 {
		return nil, errs.NewParseError("", "no exchanges configured", nil)
	}

	// Exchanges are read one after another in configuration order
	exchangePairs := make([][]entities.CoinPair, len(a.endpoints))
	for i, ep := range a.endpoints {
		pairs, err := a.loadPairs(ctx, ep)
		if err != nil {
			return nil, err
		}
		exchangePairs[i] = pairs
	}

	for i, ep := range a.endpoints {
		if len(exchangePairs[i]) == 0 {
			return nil, errs.NewResourceFetchError(ep.ExchangeID,
				fmt.Sprintf("could not fetch coin pairs for exchange %s", ep.ExchangeID), nil)
		}
	}

	shared := sharedNames(exchangePairs)

	quotePairs := make([][]entities.CoinPair, len(exchangePairs))
	for i, pairs := range exchangePairs {
		quotePairs[i] = filterQuotePairs(pairs, shared, quoteCoin)
	}

	points, err := a.zip(ctx, quotePairs, quoteCoin)
	if err != nil {
		return nil, err
	}

	if opts.Save {
		a.savePoints(ctx, points, quoteCoin)
	}

	if len(points) == 0 {
		return nil, errs.NewParseError("", "could not parse coin prices", nil)
	}

	if err := a.saveIndex(ctx, points, quoteCoin); err != nil {
		return nil, err
	}

	return points, nil
}

// loadPairs returns the cached pairs of one exchange, fetching and caching
// them on a miss.
func (a *PriceAggregator) loadPairs(ctx context.Context, ep entities.EndpointOptions) ([]entities.CoinPair, error) {
	key := cache.PairsKey(ep.ExchangeID)

	data, err := a.cache.Get(ctx, key)
	switch {
	case err == nil:
		var pairs []entities.CoinPair
		if err := json.Unmarshal([]byte(data), &pairs); err == nil {
			return pairs, nil
		}
		logging.Warn(ctx, "Discarding unreadable cached pairs", logging.Fields{
			logging.FieldExchange: ep.ExchangeID,
			logging.FieldCacheKey: key,
		})
	case errors.Is(err, cache.ErrKeyNotFound):
	default:
		return nil, fmt.Errorf("failed to read cached pairs for %s: %w", ep.ExchangeID, err)
	}

	raw, err := a.fetcher.Fetch(ctx, ep)
	if err != nil {
		return nil, err
	}

	pairs, err := a.normalizer.Normalize(ep.ExchangeID, raw, ep.PriceField)
	if err != nil {
		return nil, err
	}

	pairs = dedupePairs(pairs)
	if len(pairs) == 0 {
		return nil, nil
	}

	encoded, err := json.Marshal(pairs)
	if err != nil {
		return nil, errs.NewParseError(ep.ExchangeID, "could not encode coin pairs", err)
	}

	if err := a.cache.Set(ctx, key, string(encoded), a.ttl); err != nil {
		return nil, err
	}

	// Read back what was stored so a fresh pass and a cached one see the same values
	var canonical []entities.CoinPair
	if err := json.Unmarshal(encoded, &canonical); err != nil {
		return nil, errs.NewParseError(ep.ExchangeID, "could not decode coin pairs", err)
	}
	return canonical, nil
}

// zip pairs up the i-th entry of every exchange. Inputs are sorted by name
// and filtered to the same name set, so every position must agree on the name.
func (a *PriceAggregator) zip(ctx context.Context, quotePairs [][]entities.CoinPair, quoteCoin string) ([]entities.CoinPricePoint, error) {
	n := len(quotePairs[0])
	for i, pairs := range quotePairs[1:] {
		if len(pairs) != n {
			return nil, errs.NewParseError(a.endpoints[i+1].ExchangeID,
				fmt.Sprintf("expected %d shared pairs, got %d", n, len(pairs)), nil)
		}
	}

	points := make([]entities.CoinPricePoint, 0, n)
	for pos := 0; pos < n; pos++ {
		pairName := quotePairs[0][pos].Name

		prices := make(entities.CoinLastPrices, 0, len(quotePairs))
		for i, pairs := range quotePairs {
			if pairs[pos].Name != pairName {
				return nil, errs.NewParseError(a.endpoints[i].ExchangeID,
					fmt.Sprintf("pair %s misaligned with %s at position %d", pairs[pos].Name, pairName, pos), nil)
			}
			prices = append(prices, entities.ExchangePrice{
				Exchange: a.endpoints[i].ExchangeID,
				Price:    pairs[pos].Price,
			})
		}

		points = append(points, entities.CoinPricePoint{
			Name:   baseCoinName(ctx, pairName, quoteCoin),
			Prices: prices,
		})
	}

	return points, nil
}

// savePoints writes every point concurrently and waits for all writes.
// A failed write is logged and does not fail the pass.
func (a *PriceAggregator) savePoints(ctx context.Context, points []entities.CoinPricePoint, quoteCoin string) {
	var g errgroup.Group

	for _, point := range points {
		point := point
		if point.Name == "" {
			// prices.<QUOTE> is the namespace of the quote coin, not a coin key
			logging.Debug(ctx, "Skipping point without a base coin name", logging.Fields{
				logging.FieldQuoteCoin: quoteCoin,
			})
			continue
		}
		g.Go(func() error {
			key := cache.PriceKey(quoteCoin, point.Name)

			encoded, err := json.Marshal(point)
			if err == nil {
				err = a.cache.Set(ctx, key, string(encoded), a.ttl)
			}
			if err != nil {
				var setErr *errs.SetValueError
				if !errors.As(err, &setErr) {
					err = errs.NewSetValueError(key, err)
				}
				logging.Aggregation().PointWriteFailed(ctx, quoteCoin, point.Name, err)
				metrics.RecordPointWriteFailure(quoteCoin)
			}
			return nil
		})
	}

	_ = g.Wait()
}

func (a *PriceAggregator) saveIndex(ctx context.Context, points []entities.CoinPricePoint, quoteCoin string) error {
	names := make([]string, len(points))
	for i, p := range points {
		names[i] = p.Name
	}

	encoded, err := json.Marshal(names)
	if err != nil {
		return errs.NewSetValueError(cache.IndexKey(quoteCoin), err)
	}
	return a.cache.Set(ctx, cache.IndexKey(quoteCoin), string(encoded), a.ttl)
}

// sharedNames returns the pair names present on every exchange.
func sharedNames(exchangePairs [][]entities.CoinPair) map[string]struct{} {
	shared := make(map[string]struct{}, len(exchangePairs[0]))
	for _, p := range exchangePairs[0] {
		shared[p.Name] = struct{}{}
	}

	for _, pairs := range exchangePairs[1:] {
		seen := make(map[string]struct{}, len(pairs))
		for _, p := range pairs {
			seen[p.Name] = struct{}{}
		}
		for name := range shared {
			if _, ok := seen[name]; !ok {
				delete(shared, name)
			}
		}
	}

	return shared
}

func filterQuotePairs(pairs []entities.CoinPair, shared map[string]struct{}, quoteCoin string) []entities.CoinPair {
	out := make([]entities.CoinPair, 0, len(shared))
	for _, p := range pairs {
		if _, ok := shared[p.Name]; ok && strings.HasSuffix(p.Name, quoteCoin) {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// dedupePairs keeps the last entry for every name, at the position of its
// first occurrence.
func dedupePairs(pairs []entities.CoinPair) []entities.CoinPair {
	index := make(map[string]int, len(pairs))
	out := make([]entities.CoinPair, 0, len(pairs))
	for _, p := range pairs {
		if i, ok := index[p.Name]; ok {
			out[i] = p
			continue
		}
		index[p.Name] = len(out)
		out = append(out, p)
	}
	return out
}

// baseCoinName removes every occurrence of the quote coin from the pair
// name, not only the suffix: USDTUSDT becomes an empty name.
func baseCoinName(ctx context.Context, pairName, quoteCoin string) string {
	name := strings.ReplaceAll(pairName, quoteCoin, "")
	if trimmed := strings.TrimSuffix(pairName, quoteCoin); trimmed != name {
		logging.Debug(ctx, "Quote coin found inside base coin name", logging.Fields{
			logging.FieldPairs:     pairName,
			logging.FieldQuoteCoin: quoteCoin,
			logging.FieldCoin:      name,
		})
	}
	return name
}

func clonePoints(points []entities.CoinPricePoint) []entities.CoinPricePoint {
	out := make([]entities.CoinPricePoint, len(points))
	for i, p := range points {
		out[i] = entities.CoinPricePoint{
			Name:   p.Name,
			Prices: append(entities.CoinLastPrices(nil), p.Prices...),
		}
	}
	return out
}
