package reader

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tranvictor/hsocial/hedera"
)

// MirrorReader reads from one or more mirror nodes. Point lookups race all
// nodes and take the first success; full topic replays try nodes one by
// one since each replay may span many pages.
type MirrorReader struct {
	nodes []MirrorNode
}

func NewMirrorReader(nodes ...MirrorNode) *MirrorReader {
	return &MirrorReader{nodes: nodes}
}

// NewMirrorReaderGeneric builds a reader from name => url.
func NewMirrorReaderGeneric(nodes map[string]string, opts ...NodeOption) *MirrorReader {
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	ns := []MirrorNode{}
	for _, name := range names {
		ns = append(ns, NewOneNodeReader(name, nodes[name], opts...))
	}
	return NewMirrorReader(ns...)
}

func (mr *MirrorReader) Nodes() []MirrorNode {
	return mr.nodes
}

func wrapError(e error, name string) error {
	if e == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, e)
}

type raceResult[T any] struct {
	value T
	err   error
}

// firstSuccess runs fn on every node concurrently and returns the first
// success. If every node fails with ErrNotFound the joined error still
// matches ErrNotFound.
func firstSuccess[T any](ctx context.Context, nodes []MirrorNode, fn func(context.Context, MirrorNode) (T, error)) (T, error) {
	var zero T
	if len(nodes) == 0 {
		return zero, fmt.Errorf("no mirror node configured")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resCh := make(chan raceResult[T], len(nodes))
	for i := range nodes {
		n := nodes[i]
		go func() {
			v, err := fn(ctx, n)
			resCh <- raceResult[T]{value: v, err: wrapError(err, n.NodeName())}
		}()
	}
	errs := []error{}
	for i := 0; i < len(nodes); i++ {
		result := <-resCh
		if result.err == nil {
			return result.value, nil
		}
		errs = append(errs, result.err)
	}
	return zero, fmt.Errorf("couldn't read from any mirror nodes: %w", errors.Join(errs...))
}

func (mr *MirrorReader) TopicMessages(ctx context.Context, topicID string) ([]TopicMessage, error) {
	if len(mr.nodes) == 0 {
		return nil, fmt.Errorf("no mirror node configured")
	}
	errs := []error{}
	for _, n := range mr.nodes {
		msgs, err := n.TopicMessages(ctx, topicID)
		if err == nil {
			return msgs, nil
		}
		errs = append(errs, wrapError(err, n.NodeName()))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("couldn't replay topic %s from any mirror nodes: %w", topicID, errors.Join(errs...))
}

func (mr *MirrorReader) Topic(ctx context.Context, topicID string) (*TopicInfo, error) {
	return firstSuccess(ctx, mr.nodes, func(ctx context.Context, n MirrorNode) (*TopicInfo, error) {
		return n.Topic(ctx, topicID)
	})
}

func (mr *MirrorReader) Transaction(ctx context.Context, transactionID string) ([]TransactionRecord, error) {
	return firstSuccess(ctx, mr.nodes, func(ctx context.Context, n MirrorNode) ([]TransactionRecord, error) {
		return n.Transaction(ctx, transactionID)
	})
}

func (mr *MirrorReader) Receipt(ctx context.Context, transactionID string) (*hedera.Receipt, error) {
	return firstSuccess(ctx, mr.nodes, func(ctx context.Context, n MirrorNode) (*hedera.Receipt, error) {
		return n.Receipt(ctx, transactionID)
	})
}

func (mr *MirrorReader) Account(ctx context.Context, accountID string) (*AccountInfo, error) {
	return firstSuccess(ctx, mr.nodes, func(ctx context.Context, n MirrorNode) (*AccountInfo, error) {
		return n.Account(ctx, accountID)
	})
}
