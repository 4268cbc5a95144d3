package monitor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/hsocial/hedera"
	"github.com/tranvictor/hsocial/util/reader"
)

type scriptedSource struct {
	mu      sync.Mutex
	calls   map[string]int
	missing int // not-found answers before the receipt shows up
	err     error
	status  string
}

func (s *scriptedSource) Receipt(ctx context.Context, id string) (*hedera.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[id]++
	if s.err != nil {
		return nil, s.err
	}
	if s.calls[id] <= s.missing {
		return nil, fmt.Errorf("%s: %w", id, reader.ErrNotFound)
	}
	status := s.status
	if status == "" {
		status = hedera.StatusSuccess
	}
	return &hedera.Receipt{Status: status, TransactionID: id}, nil
}

func (s *scriptedSource) callsFor(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id]
}

func fast() Option {
	return WithBackoff(time.Millisecond)
}

func TestWatchRetriesUntilIndexed(t *testing.T) {
	src := &scriptedSource{missing: 2}
	m := NewTxMonitor(src, fast())

	receipt, err := m.Watch(context.Background(), "0.0.2@1.1")
	require.NoError(t, err)
	assert.Equal(t, hedera.StatusSuccess, receipt.Status)
	assert.Equal(t, 3, src.callsFor("0.0.2@1.1"))
}

func TestWatchGivesUpAfterLostWindow(t *testing.T) {
	src := &scriptedSource{missing: 1 << 30}
	m := NewTxMonitor(src, fast(), WithLostAfter(10*time.Millisecond))

	_, err := m.Watch(context.Background(), "0.0.2@1.1")
	require.ErrorIs(t, err, ErrReceiptTimeout)
	assert.Contains(t, err.Error(), "timed out")
}

func TestWatchStopsOnPermanentError(t *testing.T) {
	src := &scriptedSource{err: &reader.HTTPError{URL: "x", StatusCode: 400, Body: "bad id"}}
	m := NewTxMonitor(src, fast())

	_, err := m.Watch(context.Background(), "garbage")
	require.Error(t, err)
	assert.Equal(t, 1, src.callsFor("garbage"))
}

func TestWatchRetriesTemporaryHTTPErrors(t *testing.T) {
	src := &scriptedSource{err: &reader.HTTPError{URL: "x", StatusCode: 503}}
	m := NewTxMonitor(src, fast(), WithLostAfter(5*time.Millisecond))

	_, err := m.Watch(context.Background(), "0.0.2@1.1")
	require.ErrorIs(t, err, ErrReceiptTimeout)
	assert.Greater(t, src.callsFor("0.0.2@1.1"), 1)
}

func TestWatchHonorsContext(t *testing.T) {
	src := &scriptedSource{missing: 1 << 30}
	m := NewTxMonitor(src, WithBackoff(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Watch(ctx, "0.0.2@1.1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, src.callsFor("0.0.2@1.1"))
}

func TestBackoffLastEntryRepeats(t *testing.T) {
	m := NewTxMonitor(nil, WithBackoff(time.Second, 2*time.Second))
	assert.Equal(t, time.Second, m.delay(0))
	assert.Equal(t, 2*time.Second, m.delay(1))
	assert.Equal(t, 2*time.Second, m.delay(7))

	def := NewTxMonitor(nil)
	assert.Equal(t, 5*time.Second, def.delay(10))
}

func TestMakeWaitChannel(t *testing.T) {
	m := NewTxMonitor(&scriptedSource{status: "INVALID_SIGNATURE"}, fast())
	res := <-m.MakeWaitChannel(context.Background(), "0.0.2@1.1")
	require.NoError(t, res.Err)
	assert.Equal(t, "INVALID_SIGNATURE", res.Receipt.Status)
	assert.False(t, res.Receipt.IsSuccess())
}

func TestWatchMany(t *testing.T) {
	src := &scriptedSource{missing: 1}
	m := NewTxMonitor(src, fast())

	receipts, err := m.WatchMany(context.Background(), "0.0.2@1.1", "0.0.2@1.2")
	require.NoError(t, err)
	assert.Len(t, receipts, 2)
	assert.Equal(t, "0.0.2@1.2", receipts["0.0.2@1.2"].TransactionID)

	failing := NewTxMonitor(&scriptedSource{err: &reader.HTTPError{StatusCode: 400}}, fast())
	_, err = failing.WatchMany(context.Background(), "a", "b")
	assert.Error(t, err)
}
