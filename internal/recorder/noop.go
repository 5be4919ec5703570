package recorder

import (
	"context"

	"MarketScanner/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordScan(_ context.Context, _ *model.ScanBundle) error { return nil }
func (n *NoopRecorder) Close() error                                            { return nil }
