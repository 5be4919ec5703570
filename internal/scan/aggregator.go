package scan

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"MarketScanner/internal/calculator"
	"MarketScanner/internal/collector"
	"MarketScanner/internal/config"
	"MarketScanner/internal/detector"
	"MarketScanner/internal/model"
)

// ErrEmptyWatchlist is returned when there is nothing to scan.
var ErrEmptyWatchlist = errors.New("watchlist has no tickers")

// Metrics receives per-call and per-run observations.
type Metrics interface {
	RecordFetch(source string, elapsed time.Duration, err error)
	RecordScan(b *model.ScanBundle)
}

type noopMetrics struct{}

func (noopMetrics) RecordFetch(string, time.Duration, error) {}
func (noopMetrics) RecordScan(*model.ScanBundle)             {}

// Aggregator runs every detector across a watchlist and merges the results into a ScanBundle.
type Aggregator struct {
	cfg *config.Config
	src collector.Sources

	momentum   *detector.MomentumDetector
	technicals *detector.TechnicalsDetector
	options    *detector.OptionsDetector
	news       *detector.NewsDetector
	macro      *detector.MacroDetector
	earnings   *detector.EarningsDetector
	premarket  *detector.PremarketDetector
	market     *detector.MarketDetector

	log     zerolog.Logger
	metrics Metrics
	now     func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

func WithLogger(log zerolog.Logger) Option {
	return func(a *Aggregator) { a.log = log }
}

func WithMetrics(m Metrics) Option {
	return func(a *Aggregator) {
		if m != nil {
			a.metrics = m
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// NewAggregator builds every detector from cfg. Nil sources in src are skipped during a run.
func NewAggregator(cfg *config.Config, src collector.Sources, opts ...Option) *Aggregator {
	a := &Aggregator{
		cfg:        cfg,
		src:        src,
		momentum:   detector.NewMomentumDetector(cfg.Momentum),
		technicals: detector.NewTechnicalsDetector(cfg.Technicals),
		options:    detector.NewOptionsDetector(cfg.Options),
		news:       detector.NewNewsDetector(cfg.News),
		macro:      detector.NewMacroDetector(cfg.Macro),
		earnings:   detector.NewEarningsDetector(cfg.Scan.EarningsQuarters),
		premarket:  detector.NewPremarketDetector(cfg.Momentum.PremarketMovePct),
		market:     detector.NewMarketDetector(cfg.Market),
		log:        zerolog.Nop(),
		metrics:    noopMetrics{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// failureLog collects skipped calls from concurrent workers and reports them
// on the run logger.
type failureLog struct {
	log  zerolog.Logger
	mu   sync.Mutex
	list []model.SourceFailure
}

func (f *failureLog) add(symbol, source string, err error) {
	f.log.Warn().Str("symbol", symbol).Str("source", source).Err(err).Msg("source unavailable, skipping")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list = append(f.list, model.SourceFailure{Symbol: symbol, Source: source, Error: err.Error()})
}

// tickerResult is written by exactly one worker.
type tickerResult struct {
	momentum  *model.MomentumResult
	technical *model.TechnicalSignal
	options   []model.OptionSignal
	ratio     *model.CallPutRatio
	news      []model.NewsSignal
	premarket *model.PremarketMover
}

// globalResult holds the watchlist-wide sources.
type globalResult struct {
	market         *model.MarketContext
	macroEvents    []model.MacroEvent
	sectorEarnings []model.SectorEarningsEvent
	earnings       []model.EarningsResult
	extraMovers    []*model.PremarketMover
}

// Run scans the watchlist. Provider failures are recorded in the bundle and
// never abort the run; only an empty watchlist or a cancelled context do.
func (a *Aggregator) Run(ctx context.Context, wl model.Watchlist) (*model.ScanBundle, error) {
	tickers := wl.Flatten()
	if len(tickers) == 0 {
		return nil, ErrEmptyWatchlist
	}

	start := a.now()
	runID := uuid.NewString()
	log := a.log.With().Str("run_id", runID).Logger()
	log.Info().Int("tickers", len(tickers)).Msg("scan started")

	fl := &failureLog{log: log}
	results := make([]tickerResult, len(tickers))
	extras := a.extraPremarketSymbols(tickers)
	global := globalResult{extraMovers: make([]*model.PremarketMover, len(extras))}

	workers := a.cfg.Scan.Workers
	if workers < 1 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)

	g.Go(func() error {
		a.scanCalendars(ctx, start, wl, fl, &global)
		return nil
	})
	g.Go(func() error {
		global.market = a.scanMarket(ctx, fl)
		return nil
	})
	for i, sym := range extras {
		i, sym := i, sym
		g.Go(func() error {
			global.extraMovers[i] = a.scanExtraMover(ctx, sym, fl)
			return nil
		})
	}
	for i, sym := range tickers {
		i, sym := i, sym
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[i] = a.scanTicker(ctx, sym, start, fl)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bundle := a.merge(runID, start, wl, tickers, results, &global, fl)
	bundle.Duration = a.now().Sub(start)
	a.metrics.RecordScan(bundle)

	log.Info().
		Int("signals", bundle.SignalCount()).
		Int("failures", len(bundle.Failures)).
		Dur("duration", bundle.Duration).
		Msg("scan finished")
	return bundle, nil
}

// fetch runs one provider call under the per-call timeout and records its outcome.
func fetch[T any](ctx context.Context, a *Aggregator, fl *failureLog, source, symbol string, fn func(context.Context) (T, error)) (T, bool) {
	cctx, cancel := context.WithTimeout(ctx, a.cfg.Scan.CallTimeout)
	defer cancel()

	began := time.Now()
	v, err := fn(cctx)
	a.metrics.RecordFetch(source, time.Since(began), err)
	if err != nil {
		if ctx.Err() == nil {
			fl.add(symbol, source, err)
		}
		var zero T
		return zero, false
	}
	return v, true
}

func (a *Aggregator) scanTicker(ctx context.Context, sym string, now time.Time, fl *failureLog) tickerResult {
	var res tickerResult

	var bars []model.OHLCV
	if a.src.History != nil {
		bars, _ = fetch(ctx, a, fl, "history", sym, func(c context.Context) ([]model.OHLCV, error) {
			return a.src.History.FetchDailyBars(c, sym, a.cfg.Scan.HistoryDays)
		})
	}

	if a.src.Quotes != nil {
		if q, ok := fetch(ctx, a, fl, "quote", sym, func(c context.Context) (model.Quote, error) {
			return a.src.Quotes.FetchQuote(c, sym)
		}); ok {
			res.momentum, res.premarket = a.quoteSignals(ctx, sym, q, bars, fl)
		}
	}

	if len(bars) > 0 {
		var si *model.ShortInterest
		if a.src.ShortInterest != nil {
			if v, ok := fetch(ctx, a, fl, "short_interest", sym, func(c context.Context) (model.ShortInterest, error) {
				return a.src.ShortInterest.FetchShortInterest(c, sym)
			}); ok {
				si = &v
			}
		}
		ts, err := a.technicals.Analyze(sym, model.ExtractCloses(bars), si)
		if err == nil && len(ts.Signals) > 0 {
			res.technical = &ts
		}
	}

	if a.src.Options != nil && a.cfg.Options.Enabled {
		res.options, res.ratio = a.scanOptions(ctx, sym, now, fl)
	}

	if a.src.News != nil {
		from, to := a.news.Window(now)
		if articles, ok := fetch(ctx, a, fl, "news", sym, func(c context.Context) ([]model.Article, error) {
			return a.src.News.FetchNews(c, sym, from, to)
		}); ok {
			res.news = a.news.Detect(sym, articles, now)
		}
	}
	return res
}

func (a *Aggregator) quoteSignals(ctx context.Context, sym string, q model.Quote, bars []model.OHLCV, fl *failureLog) (*model.MomentumResult, *model.PremarketMover) {
	var yr *model.YearRange
	if a.src.YearRange != nil {
		if v, ok := fetch(ctx, a, fl, "year_range", sym, func(c context.Context) (model.YearRange, error) {
			return a.src.YearRange.FetchYearRange(c, sym)
		}); ok {
			yr = &v
		}
	}
	if yr == nil && len(bars) > 0 {
		if high, low, err := calculator.Calculate52WeekRange(bars); err == nil {
			yr = &model.YearRange{High: high, Low: low}
		}
	}

	if q.Volume == 0 && len(bars) > 0 {
		q.Volume = int64(bars[len(bars)-1].Volume)
	}
	avgVol := detector.AverageVolume(bars, a.cfg.Scan.AvgVolumeDays)

	var (
		mom *model.MomentumResult
		pm  *model.PremarketMover
	)
	if m, ok := a.momentum.Detect(q, yr, avgVol); ok {
		mom = &m
	}
	if p, ok := a.premarket.Detect(q, true); ok {
		pm = &p
	}
	return mom, pm
}

func (a *Aggregator) scanOptions(ctx context.Context, sym string, now time.Time, fl *failureLog) ([]model.OptionSignal, *model.CallPutRatio) {
	expiries, ok := fetch(ctx, a, fl, "options", sym, func(c context.Context) ([]time.Time, error) {
		return a.src.Options.FetchExpirations(c, sym)
	})
	if !ok {
		return nil, nil
	}

	near := a.options.NearTermExpiries(expiries, now)
	ratioExp := a.options.RatioExpiries(expiries)

	chains := make(map[time.Time]model.OptionChain)
	load := func(e time.Time) {
		if _, done := chains[e]; done {
			return
		}
		if c, ok := fetch(ctx, a, fl, "options", sym, func(cc context.Context) (model.OptionChain, error) {
			return a.src.Options.FetchChain(cc, sym, e)
		}); ok {
			chains[e] = c
		}
	}

	var nearChains, ratioChains []model.OptionChain
	for _, e := range near {
		load(e)
		if c, ok := chains[e]; ok {
			nearChains = append(nearChains, c)
		}
	}
	for _, e := range ratioExp {
		load(e)
		if c, ok := chains[e]; ok {
			ratioChains = append(ratioChains, c)
		}
	}

	signals := a.options.ScanChains(nearChains)
	var ratio *model.CallPutRatio
	if r, ok := detector.CallPutRatio(sym, ratioChains); ok {
		ratio = &r
	}
	return signals, ratio
}

func (a *Aggregator) scanCalendars(ctx context.Context, now time.Time, wl model.Watchlist, fl *failureLog, out *globalResult) {
	if a.src.Calendar == nil {
		return
	}
	macroEnd := now.AddDate(0, 0, a.cfg.Macro.DaysAhead)
	// weekends push reports past the nominal lookahead
	earnEnd := now.AddDate(0, 0, a.cfg.Scan.EarningsLookaheadDays+2)
	if macroEnd.After(earnEnd) {
		earnEnd = macroEnd
	}

	if entries, ok := fetch(ctx, a, fl, "economic_calendar", "", func(c context.Context) ([]model.EconomicEntry, error) {
		return a.src.Calendar.FetchEconomicCalendar(c, now, macroEnd)
	}); ok {
		for _, e := range entries {
			if ev, keep := a.macro.ClassifyEconomicEvent(e); keep {
				out.macroEvents = append(out.macroEvents, ev)
			}
		}
		detector.SortMacroEvents(out.macroEvents)
	}

	entries, ok := fetch(ctx, a, fl, "earnings_calendar", "", func(c context.Context) ([]model.EarningsEntry, error) {
		return a.src.Calendar.FetchEarningsCalendar(c, now, earnEnd)
	})
	if !ok {
		return
	}
	for _, e := range entries {
		if e.Date.After(macroEnd) {
			continue
		}
		if ev, keep := a.macro.ClassifySectorEarnings(e); keep {
			out.sectorEarnings = append(out.sectorEarnings, ev)
		}
	}
	detector.SortSectorEarnings(out.sectorEarnings)

	for _, e := range a.earnings.Filter(entries, wl) {
		sym := model.NormalizeSymbol(e.Symbol)
		history, _ := fetch(ctx, a, fl, "earnings_history", sym, func(c context.Context) ([]model.EarningsSurprise, error) {
			return a.src.Calendar.FetchEarningsHistory(c, sym)
		})
		out.earnings = append(out.earnings, a.earnings.Build(e, history))
	}
	detector.SortEarnings(out.earnings)
}

func (a *Aggregator) scanMarket(ctx context.Context, fl *failureLog) *model.MarketContext {
	if a.src.IndexQuotes == nil {
		return nil
	}
	quotes := make(map[string]model.Quote)
	for _, sym := range a.market.Symbols() {
		sym := sym
		if q, ok := fetch(ctx, a, fl, "market_quote", sym, func(c context.Context) (model.Quote, error) {
			return a.src.IndexQuotes.FetchQuote(c, sym)
		}); ok {
			quotes[sym] = q
		}
	}
	mc, ok := a.market.Classify(quotes)
	if !ok {
		return nil
	}
	return mc
}

func (a *Aggregator) extraPremarketSymbols(tickers []string) []string {
	if a.src.Quotes == nil {
		return nil
	}
	seen := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		seen[t] = true
	}
	var out []string
	for _, s := range a.cfg.Scan.AlwaysWatch {
		s = model.NormalizeSymbol(s)
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func (a *Aggregator) scanExtraMover(ctx context.Context, sym string, fl *failureLog) *model.PremarketMover {
	q, ok := fetch(ctx, a, fl, "quote", sym, func(c context.Context) (model.Quote, error) {
		return a.src.Quotes.FetchQuote(c, sym)
	})
	if !ok {
		return nil
	}
	if pm, ok := a.premarket.Detect(q, false); ok {
		return &pm
	}
	return nil
}

// merge runs on a single goroutine after every worker has finished.
func (a *Aggregator) merge(runID string, start time.Time, wl model.Watchlist, tickers []string, results []tickerResult, g *globalResult, fl *failureLog) *model.ScanBundle {
	b := &model.ScanBundle{
		RunID:           runID,
		ScanTime:        start,
		Watchlist:       wl,
		Tickers:         tickers,
		MarketContext:   g.market,
		Premarket:       []model.PremarketMover{},
		Momentum:        []model.MomentumResult{},
		Technicals:      []model.TechnicalSignal{},
		Options:         []model.OptionSignal{},
		OptionsByTicker: map[string][]model.OptionSignal{},
		CallPutRatios:   map[string]model.CallPutRatio{},
		News:            []model.NewsSignal{},
		Earnings:        append([]model.EarningsResult{}, g.earnings...),
		MacroEvents:     truncate(g.macroEvents, a.cfg.Limits.MacroEvents),
		SectorEarnings:  truncate(g.sectorEarnings, a.cfg.Limits.SectorEarnings),
	}

	var allOptions []model.OptionSignal
	for i, r := range results {
		if r.momentum != nil {
			b.Momentum = append(b.Momentum, *r.momentum)
		}
		if r.technical != nil {
			b.Technicals = append(b.Technicals, *r.technical)
		}
		if r.premarket != nil {
			b.Premarket = append(b.Premarket, *r.premarket)
		}
		if r.ratio != nil {
			b.CallPutRatios[tickers[i]] = *r.ratio
		}
		allOptions = append(allOptions, r.options...)
		b.News = append(b.News, r.news...)
	}
	for _, pm := range g.extraMovers {
		if pm != nil {
			b.Premarket = append(b.Premarket, *pm)
		}
	}

	detector.RankMomentum(b.Momentum)

	detector.RankOptions(allOptions)
	b.OptionsByTicker = detector.GroupOptions(allOptions, a.cfg.Limits.OptionsPerTicker)
	kept := make(map[string]int)
	for _, o := range allOptions {
		if kept[o.Symbol] < a.cfg.Limits.OptionsPerTicker {
			kept[o.Symbol]++
			b.Options = append(b.Options, o)
		}
	}

	detector.RankNews(b.News)
	b.News = truncate(b.News, a.cfg.Limits.News)

	detector.RankPremarket(b.Premarket)
	b.Premarket = truncate(b.Premarket, a.cfg.Limits.Premarket)

	b.Failures = fl.list
	sort.SliceStable(b.Failures, func(i, j int) bool {
		if b.Failures[i].Symbol != b.Failures[j].Symbol {
			return b.Failures[i].Symbol < b.Failures[j].Symbol
		}
		return b.Failures[i].Source < b.Failures[j].Source
	})
	return b
}

func truncate[T any](s []T, n int) []T {
	if s == nil {
		return []T{}
	}
	if n >= 0 && len(s) > n {
		return s[:n]
	}
	return s
}
