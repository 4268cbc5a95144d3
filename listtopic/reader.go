package listtopic

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/tranvictor/hsocial/logging"
	"github.com/tranvictor/hsocial/util/reader"
)

// MessageSource returns every message of a topic in consensus order.
// *reader.MirrorReader satisfies it.
type MessageSource interface {
	TopicMessages(ctx context.Context, topicID string) ([]reader.TopicMessage, error)
}

// Reader replays list topics. Replays are cached per topic id for the life
// of the Reader; entries are immutable and are replaced, never edited, so
// callers may share the returned slices as long as they do not modify them.
type Reader struct {
	source MessageSource
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string][]Item
	// gen is bumped by Invalidate; a replay started under an older
	// generation is returned to its callers but never cached.
	gen   map[string]uint64
	group singleflight.Group
}

func NewReader(source MessageSource, logger *zap.Logger) *Reader {
	return &Reader{
		source: source,
		logger: logging.OrNop(logger),
		cache:  map[string][]Item{},
		gen:    map[string]uint64{},
	}
}

// FetchList returns the current items of the kind list kept on topicID.
func (r *Reader) FetchList(ctx context.Context, kind Kind, topicID string) ([]Item, error) {
	records, err := r.Records(ctx, topicID)
	if err != nil {
		return nil, err
	}
	return Materialize(kind, records), nil
}

// Records returns every decodable record on topicID in consensus order,
// tombstones included.
func (r *Reader) Records(ctx context.Context, topicID string) ([]Item, error) {
	r.mu.RLock()
	records, ok := r.cache[topicID]
	r.mu.RUnlock()
	if ok {
		return records, nil
	}

	v, err, _ := r.group.Do(topicID, func() (interface{}, error) {
		r.mu.RLock()
		gen := r.gen[topicID]
		r.mu.RUnlock()
		records, err := r.replay(ctx, topicID)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		if r.gen[topicID] == gen {
			r.cache[topicID] = records
		}
		r.mu.Unlock()
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Item), nil
}

// Invalidate drops the cached replay of topicID. Call it after a write to
// the topic is confirmed.
func (r *Reader) Invalidate(topicID string) {
	r.mu.Lock()
	delete(r.cache, topicID)
	r.gen[topicID]++
	r.mu.Unlock()
	r.group.Forget(topicID)
}

func (r *Reader) replay(ctx context.Context, topicID string) ([]Item, error) {
	msgs, err := r.source.TopicMessages(ctx, topicID)
	if errors.Is(err, reader.ErrNotFound) {
		return nil, fmt.Errorf("list topic %s: %w", topicID, err)
	}
	if err != nil {
		return nil, fmt.Errorf("couldn't read list topic %s: %w", topicID, err)
	}

	chunks := newChunkBuffer()
	records := make([]Item, 0, len(msgs))
	for _, msg := range msgs {
		data, err := msg.Decode()
		if err != nil {
			r.logger.Warn("skipping undecodable list message", zap.String("topic", topicID), zap.Error(err))
			continue
		}
		data, complete := chunks.add(msg, data)
		if !complete {
			continue
		}
		item, err := DecodeItem(data)
		if err != nil {
			r.logger.Warn("skipping malformed list message",
				zap.String("topic", topicID),
				zap.Int64("sequence", msg.SequenceNumber),
				zap.Error(err),
			)
			continue
		}
		records = append(records, item)
	}
	if n := chunks.pending(); n > 0 {
		r.logger.Warn("list topic has incomplete chunked messages", zap.String("topic", topicID), zap.Int("count", n))
	}
	return records, nil
}

type chunk struct {
	number int
	data   []byte
}

// chunkBuffer joins messages that were split over several consensus
// messages. A joined message takes the consensus position of its last
// chunk.
type chunkBuffer struct {
	parts map[string][]chunk
}

func newChunkBuffer() *chunkBuffer {
	return &chunkBuffer{parts: map[string][]chunk{}}
}

func (b *chunkBuffer) add(msg reader.TopicMessage, data []byte) ([]byte, bool) {
	info := msg.ChunkInfo
	if info == nil || info.Total <= 1 {
		return data, true
	}
	id := info.InitialTransactionID.String()
	parts := append(b.parts[id], chunk{number: info.Number, data: data})
	if len(parts) < info.Total {
		b.parts[id] = parts
		return nil, false
	}
	delete(b.parts, id)
	sort.Slice(parts, func(i, j int) bool { return parts[i].number < parts[j].number })
	var joined []byte
	for _, p := range parts {
		joined = append(joined, p.data...)
	}
	return joined, true
}

func (b *chunkBuffer) pending() int {
	return len(b.parts)
}
