package listtopic

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/tranvictor/hsocial/executor"
	"github.com/tranvictor/hsocial/hedera"
	"github.com/tranvictor/hsocial/util/reader"
)

type createTopicTx struct{ memo string }

type submitMessageTx struct {
	topicID string
	payload []byte
}

// fakeLedger is an in-memory topic service acting as ledger builder,
// signer, receipt watcher and mirror node at once.
type fakeLedger struct {
	mu       sync.Mutex
	nextNum  int
	txNum    int
	topics   map[string][]reader.TopicMessage
	receipts map[string]*hedera.Receipt
	fetches  int
	creates  int
	submits  int

	failSubmits int
	failWatches int
	rejectWatch bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		nextNum:  9,
		topics:   map[string][]reader.TopicMessage{},
		receipts: map[string]*hedera.Receipt{},
	}
}

func (f *fakeLedger) CreateTopic(memo string) (executor.Transaction, error) {
	return createTopicTx{memo: memo}, nil
}

func (f *fakeLedger) SubmitMessage(topicID string, payload []byte) (executor.Transaction, error) {
	return submitMessageTx{topicID: topicID, payload: payload}, nil
}

func (f *fakeLedger) Freeze(ctx context.Context, tx executor.Transaction) (executor.Transaction, error) {
	return tx, nil
}

func (f *fakeLedger) Submit(ctx context.Context, signed executor.Transaction) (*executor.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txNum++
	txID := fmt.Sprintf("0.0.2@1700000000.%09d", f.txNum)

	switch tx := signed.(type) {
	case createTopicTx:
		f.creates++
		topicID := fmt.Sprintf("0.0.%d", f.nextNum)
		f.nextNum++
		f.topics[topicID] = nil
		f.receipts[txID] = &hedera.Receipt{Status: hedera.StatusSuccess, EntityID: topicID}
	case submitMessageTx:
		f.submits++
		if f.failSubmits > 0 {
			f.failSubmits--
			f.receipts[txID] = &hedera.Receipt{Status: "INVALID_TOPIC_ID"}
			break
		}
		msgs := f.topics[tx.topicID]
		f.topics[tx.topicID] = append(msgs, reader.TopicMessage{
			TopicID:        tx.topicID,
			SequenceNumber: int64(len(msgs) + 1),
			Message:        base64.StdEncoding.EncodeToString(tx.payload),
		})
		f.receipts[txID] = &hedera.Receipt{Status: hedera.StatusSuccess}
	default:
		return nil, errors.New("unsupported transaction")
	}
	return &executor.Response{TransactionID: txID}, nil
}

func (f *fakeLedger) Watch(ctx context.Context, transactionID string) (*hedera.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rejectWatch {
		f.rejectWatch = false
		return nil, errors.New("USER_REJECT")
	}
	if f.failWatches > 0 {
		f.failWatches--
		return nil, errors.New("mirror node 503")
	}
	r, ok := f.receipts[transactionID]
	if !ok {
		return nil, reader.ErrNotFound
	}
	return r, nil
}

func (f *fakeLedger) TopicMessages(ctx context.Context, topicID string) ([]reader.TopicMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	msgs, ok := f.topics[topicID]
	if !ok {
		return nil, reader.ErrNotFound
	}
	return append([]reader.TopicMessage(nil), msgs...), nil
}

func (f *fakeLedger) counts() (creates, submits, fetches int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates, f.submits, f.fetches
}

// rawMessage appends data to topicID without going through a transaction.
func (f *fakeLedger) rawMessage(topicID string, msg reader.TopicMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.TopicID = topicID
	msg.SequenceNumber = int64(len(f.topics[topicID]) + 1)
	f.topics[topicID] = append(f.topics[topicID], msg)
}
