package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"MarketScanner/internal/model"
	"MarketScanner/internal/recorder"
	"MarketScanner/internal/report"
)

// ErrScanInProgress is returned when a scan is requested while another one runs.
var ErrScanInProgress = errors.New("a scan is already running")

// Scanner produces a bundle for a watchlist.
type Scanner interface {
	Run(ctx context.Context, wl model.Watchlist) (*model.ScanBundle, error)
}

// BundleWriter persists a finished bundle and returns where it went.
type BundleWriter interface {
	Write(b *model.ScanBundle) (string, error)
}

// Sender delivers the text digest.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Deps are the collaborators of a scan job. Writer and Sender may be nil.
type Deps struct {
	Scanner    Scanner
	Watchlist  model.Watchlist
	Writer     BundleWriter
	Digest     *report.Digest
	Recorder   recorder.Recorder
	Sender     Sender
	MaxRetries int
}

// Scheduler runs scans on a cron schedule and on demand.
type Scheduler struct {
	cron *cron.Cron
	deps Deps
	log  zerolog.Logger
	ctx  context.Context

	running sync.Mutex
	bg      sync.WaitGroup
	mu      sync.RWMutex
	last    *model.ScanBundle
	digest  string
}

// NewScheduler creates a scheduler whose cron fields are evaluated in loc and
// include seconds.
func NewScheduler(ctx context.Context, loc *time.Location, deps Deps, log zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if deps.Recorder == nil {
		deps.Recorder = recorder.NewNoopRecorder()
	}
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		deps: deps,
		log:  log,
		ctx:  ctx,
	}
}

// Register adds the scan job under a six-field cron expression.
func (s *Scheduler) Register(expr string) error {
	if _, err := s.cron.AddFunc(expr, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	s.log.Info().Str("cron", expr).Msg("scan task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop waits for running cron jobs and background scans to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.bg.Wait()
	s.log.Info().Msg("scheduler stopped")
}

// Next returns the next scheduled run, zero when nothing is registered.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) scanTask() {
	if _, err := s.RunScan(s.ctx); err != nil {
		s.log.Error().Err(err).Msg("scheduled scan failed")
	}
}

// RunInBackground starts a scan on its own goroutine. onDone, when set, gets
// the bundle of a successful scan.
func (s *Scheduler) RunInBackground(ctx context.Context, onDone func(*model.ScanBundle)) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		bundle, err := s.RunScan(ctx)
		if err != nil {
			s.log.Error().Err(err).Msg("background scan failed")
			return
		}
		if onDone != nil {
			onDone(bundle)
		}
	}()
}

// RunScan executes one scan and feeds every sink. Sink failures are logged and
// do not fail the scan.
func (s *Scheduler) RunScan(ctx context.Context) (*model.ScanBundle, error) {
	if !s.running.TryLock() {
		return nil, ErrScanInProgress
	}
	defer s.running.Unlock()

	bundle, err := s.deps.Scanner.Run(ctx, s.deps.Watchlist)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	log := s.log.With().Str("run_id", bundle.RunID).Logger()

	if s.deps.Writer != nil {
		if _, err := s.deps.Writer.Write(bundle); err != nil {
			log.Error().Err(err).Msg("write bundle")
		}
	}
	if err := s.deps.Recorder.RecordScan(ctx, bundle); err != nil {
		log.Error().Err(err).Msg("record scan")
	}

	var text string
	if s.deps.Digest != nil {
		text = s.deps.Digest.Render(bundle)
	}
	if s.deps.Sender != nil && text != "" {
		if err := s.deps.Sender.SendWithRetry(ctx, text, s.deps.MaxRetries); err != nil {
			log.Error().Err(err).Msg("send digest")
		}
	}

	s.mu.Lock()
	s.last, s.digest = bundle, text
	s.mu.Unlock()
	return bundle, nil
}

// Last returns the most recent bundle and its digest.
func (s *Scheduler) Last() (*model.ScanBundle, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.digest
}

const helpText = "Commands:\n/scan - run a scan now\n/digest - last scan digest\n/status - last scan summary"

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	switch command {
	case "/scan":
		if _, err := s.RunScan(ctx); err != nil {
			return fmt.Sprintf("Scan failed: %v", err)
		}
		if s.deps.Sender != nil {
			// the digest went out with the scan
			return ""
		}
		_, text := s.Last()
		return text
	case "/digest":
		if _, text := s.Last(); text != "" {
			return text
		}
		return "No scan has completed yet."
	case "/status":
		b, _ := s.Last()
		if b == nil {
			return "No scan has completed yet."
		}
		return fmt.Sprintf("Last scan %s at %s: %d signals, %d source failures, took %s",
			b.RunID, b.ScanTime.Format("2006-01-02 15:04 MST"), b.SignalCount(), len(b.Failures),
			b.Duration.Round(time.Millisecond))
	default:
		return helpText
	}
}

// cronLogger routes cron's internal logging through zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
