package profile

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/tranvictor/hsocial/executor"
	"github.com/tranvictor/hsocial/listtopic"
	"github.com/tranvictor/hsocial/logging"
)

// Ledger builds every transaction the profile flows need.
type Ledger interface {
	listtopic.Ledger
	UploadFile(contents []byte) (executor.Transaction, error)
	UpdateAccountMemo(memo string) (executor.Transaction, error)
}

// Publisher republishes a profile record on its topic. Its UpdateListTopic
// method is the owner updater list managers call after creating a topic.
type Publisher struct {
	ledger  Ledger
	signer  executor.Signer
	watcher executor.ReceiptWatcher
	exec    *executor.Executor
	logger  *zap.Logger

	mu      sync.Mutex
	topicID string
	current Profile
}

func NewPublisher(
	topicID string,
	current Profile,
	ledger Ledger,
	signer executor.Signer,
	watcher executor.ReceiptWatcher,
	exec *executor.Executor,
	logger *zap.Logger,
) *Publisher {
	if exec == nil {
		exec = executor.NewExecutor(executor.WithLogger(logger))
	}
	return &Publisher{
		ledger:  ledger,
		signer:  signer,
		watcher: watcher,
		exec:    exec,
		logger:  logging.OrNop(logger),
		topicID: topicID,
		current: current,
	}
}

func (p *Publisher) Current() Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Publish writes next to the profile topic and makes it current once the
// write is confirmed.
func (p *Publisher) Publish(ctx context.Context, next Profile) executor.Result {
	payload, err := json.Marshal(next)
	if err != nil {
		return buildFailure(err)
	}
	tx, err := p.ledger.SubmitMessage(p.topicID, payload)
	if err != nil {
		return buildFailure(err)
	}
	res := p.exec.Execute(ctx, executor.Request{
		Transaction: tx,
		Signer:      p.signer,
		Watcher:     p.watcher,
	})
	if res.Success {
		p.mu.Lock()
		p.current = next
		p.mu.Unlock()
		p.logger.Info("profile published", zap.String("topic", p.topicID), zap.String("tx", res.TransactionID))
	}
	return res
}

// UpdateListTopic points the kind list at topicID, leaving every other
// field as it is.
func (p *Publisher) UpdateListTopic(ctx context.Context, topicID string, kind listtopic.Kind) (bool, error) {
	res := p.Publish(ctx, p.Current().WithListTopic(kind, topicID))
	if !res.Success {
		return false, res.Err()
	}
	return true, nil
}
