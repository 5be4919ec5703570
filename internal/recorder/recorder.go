package recorder

import (
	"context"

	"MarketScanner/internal/model"
)

// Recorder journals finished scans for later analysis. Scans never read it back.
type Recorder interface {
	RecordScan(ctx context.Context, b *model.ScanBundle) error
	Close() error
}
