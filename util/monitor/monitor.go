package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tranvictor/hsocial/hedera"
	"github.com/tranvictor/hsocial/logging"
	"github.com/tranvictor/hsocial/util/reader"
)

var DefaultBackoff = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	3 * time.Second,
	5 * time.Second,
}

const DefaultLostAfter = 2 * time.Minute

// ErrReceiptTimeout is returned when the mirror node never indexed the
// transaction within the lost-after window.
var ErrReceiptTimeout = errors.New("receipt lookup timed out")

// ReceiptSource is the read side a TxMonitor polls.
type ReceiptSource interface {
	Receipt(ctx context.Context, transactionID string) (*hedera.Receipt, error)
}

// TxMonitor waits for transaction receipts by polling the mirror node. It
// owns the retry policy: callers only see a receipt or a final error.
type TxMonitor struct {
	source    ReceiptSource
	backoff   []time.Duration
	lostAfter time.Duration
	logger    *zap.Logger
}

type Option func(*TxMonitor)

// WithBackoff sets the delay before each poll. The last entry repeats.
func WithBackoff(backoff ...time.Duration) Option {
	return func(m *TxMonitor) {
		if len(backoff) > 0 {
			m.backoff = backoff
		}
	}
}

func WithLostAfter(d time.Duration) Option {
	return func(m *TxMonitor) {
		if d > 0 {
			m.lostAfter = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(m *TxMonitor) { m.logger = logging.OrNop(l) }
}

func NewTxMonitor(source ReceiptSource, opts ...Option) *TxMonitor {
	m := &TxMonitor{
		source:    source,
		backoff:   DefaultBackoff,
		lostAfter: DefaultLostAfter,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func NewGenericTxMonitor(r *reader.MirrorReader, opts ...Option) *TxMonitor {
	return NewTxMonitor(r, opts...)
}

func (m *TxMonitor) delay(attempt int) time.Duration {
	if attempt < len(m.backoff) {
		return m.backoff[attempt]
	}
	return m.backoff[len(m.backoff)-1]
}

// Watch blocks until the receipt of transactionID is indexed. Not-found and
// transient mirror errors are retried; the lookup gives up after the
// lost-after window or when ctx ends.
func (m *TxMonitor) Watch(ctx context.Context, transactionID string) (*hedera.Receipt, error) {
	startTime := time.Now()
	var lastErr error
	timer := time.NewTimer(m.delay(0))
	defer timer.Stop()

	for attempt := 0; ; attempt++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("watching %s: %w", transactionID, ctx.Err())
		case <-timer.C:
		}

		receipt, err := m.source.Receipt(ctx, transactionID)
		if err == nil {
			m.logger.Debug("receipt found",
				zap.String("tx", transactionID),
				zap.String("status", receipt.Status),
				zap.Int("attempts", attempt+1),
			)
			return receipt, nil
		}
		lastErr = err
		if !retryable(err) {
			return nil, fmt.Errorf("watching %s: %w", transactionID, err)
		}
		if time.Since(startTime) >= m.lostAfter {
			return nil, fmt.Errorf(
				"transaction %s not confirmed after %s (last error: %s): %w",
				transactionID, m.lostAfter, lastErr, ErrReceiptTimeout,
			)
		}
		m.logger.Debug("receipt not ready",
			zap.String("tx", transactionID),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		timer.Reset(m.delay(attempt + 1))
	}
}

func retryable(err error) bool {
	if errors.Is(err, reader.ErrNotFound) {
		return true
	}
	var httpErr *reader.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// network level failures (connection refused, resets) are transient
	return true
}

// WatchResult is delivered on the channel returned by MakeWaitChannel.
type WatchResult struct {
	TransactionID string
	Receipt       *hedera.Receipt
	Err           error
}

func (m *TxMonitor) MakeWaitChannel(ctx context.Context, transactionID string) <-chan WatchResult {
	result := make(chan WatchResult, 1)
	go func() {
		receipt, err := m.Watch(ctx, transactionID)
		result <- WatchResult{TransactionID: transactionID, Receipt: receipt, Err: err}
	}()
	return result
}

// WatchMany waits for every transaction and returns receipts keyed by
// transaction id. The first failure cancels the remaining watches.
func (m *TxMonitor) WatchMany(ctx context.Context, transactionIDs ...string) (map[string]*hedera.Receipt, error) {
	var mu sync.Mutex
	result := map[string]*hedera.Receipt{}
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range transactionIDs {
		id := id
		g.Go(func() error {
			receipt, err := m.Watch(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			result[id] = receipt
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
