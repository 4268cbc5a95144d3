package listtopic

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tranvictor/hsocial/executor"
	"github.com/tranvictor/hsocial/logging"
	"github.com/tranvictor/hsocial/steps"
	"github.com/tranvictor/hsocial/txerror"
)

const (
	StepCreateListTopic = "createListTopic"
	StepSendToList      = "sendToList"
	StepUpdateProfile   = "updateProfile"
)

// Ledger builds the topic transactions. Signing and submission go through
// the executor.
type Ledger interface {
	CreateTopic(memo string) (executor.Transaction, error)
	SubmitMessage(topicID string, payload []byte) (executor.Transaction, error)
}

// OwnerUpdater points the owner record at a newly created list topic. It
// must only touch the kind's list field.
type OwnerUpdater func(ctx context.Context, topicID string, kind Kind) (bool, error)

type Config struct {
	Kind Kind
	// TopicID is the list topic the owner record already references, or
	// empty when the list has never been written.
	TopicID     string
	Ledger      Ledger
	Signer      executor.Signer
	Watcher     executor.ReceiptWatcher
	Reader      *Reader
	UpdateOwner OwnerUpdater

	Executor    *executor.Executor
	SettleDelay time.Duration
	Logger      *zap.Logger
	Observer    steps.Observer
}

// Manager adds to and removes from one owner list kept on a topic that is
// created by the first addition.
type Manager struct {
	cfg    Config
	exec   *executor.Executor
	logger *zap.Logger

	mu      sync.Mutex
	topicID string
	// linked is false while a topic exists that the owner record does not
	// reference yet
	linked bool
}

func NewManager(cfg Config) (*Manager, error) {
	if _, err := ParseKind(string(cfg.Kind)); err != nil {
		return nil, err
	}
	switch {
	case cfg.Ledger == nil:
		return nil, errors.New("list manager needs a ledger")
	case cfg.Reader == nil:
		return nil, errors.New("list manager needs a reader")
	case cfg.UpdateOwner == nil:
		return nil, errors.New("list manager needs an owner updater")
	}
	exec := cfg.Executor
	if exec == nil {
		exec = executor.NewExecutor(executor.WithLogger(cfg.Logger))
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = steps.DefaultSettleDelay
	}
	return &Manager{
		cfg:     cfg,
		exec:    exec,
		logger:  logging.OrNop(cfg.Logger).With(zap.String("list", string(cfg.Kind))),
		topicID: cfg.TopicID,
		linked:  true,
	}, nil
}

func (m *Manager) Kind() Kind {
	return m.cfg.Kind
}

// TopicID returns the list topic, empty until one exists.
func (m *Manager) TopicID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.topicID
}

// AddResult reports what an addition did. CreatedTopic is set whenever
// this addition created the list topic, even if a later step failed.
type AddResult struct {
	Success        bool
	TopicID        string
	CreatedTopic   string
	UpdatedProfile bool
}

// Addition is one in-flight addItem flow. Its runner is exposed so a UI
// can render and retry individual steps.
type Addition struct {
	m      *Manager
	item   Item
	runner *steps.Runner

	mu      sync.Mutex
	topicID string
	// createTx is a topic creation that was submitted but never confirmed
	createTx string
	created  bool
	written  bool
	updated  bool
}

// NewAddition plans the addition of item. The plan creates the topic only
// when the list has none, and updates the owner record only when a topic
// the owner does not reference yet exists.
func (m *Manager) NewAddition(item Item) (*Addition, error) {
	if err := item.Validate(m.cfg.Kind); err != nil {
		return nil, err
	}
	m.mu.Lock()
	topicID, linked := m.topicID, m.linked
	m.mu.Unlock()

	a := &Addition{m: m, item: item, topicID: topicID}
	plan := steps.Plan{}.
		With(topicID == "", steps.Step{Name: StepCreateListTopic, Action: a.createListTopic}).
		With(true, steps.Step{Name: StepSendToList, Action: a.sendToList}).
		With(topicID == "" || !linked, steps.Step{Name: StepUpdateProfile, Action: a.updateProfile})
	a.runner = steps.NewRunner(plan,
		steps.WithSettleDelay(m.cfg.SettleDelay),
		steps.WithLogger(m.logger),
		steps.WithObserver(m.cfg.Observer),
	)
	return a, nil
}

// AddItem appends item to the list, creating the list topic first if
// needed. On failure the returned result still tells what was done; the
// error is a *steps.StepError naming the step to retry.
func (m *Manager) AddItem(ctx context.Context, item Item) (AddResult, error) {
	a, err := m.NewAddition(item)
	if err != nil {
		return AddResult{}, err
	}
	return a.Run(ctx)
}

func (a *Addition) Runner() *steps.Runner {
	return a.runner
}

// Run drives the remaining steps with auto-advance on. Calling it again
// after a failure resumes from the failed step when that step is safe to
// retry; otherwise it returns the failure again and Retry is needed.
func (a *Addition) Run(ctx context.Context) (AddResult, error) {
	return a.finish(a.runner.Run(ctx))
}

// Retry restarts the failed step even if its transaction was submitted.
// An unconfirmed topic creation is looked up before anything is resent.
func (a *Addition) Retry(ctx context.Context) (AddResult, error) {
	return a.finish(a.runner.Retry(ctx))
}

func (a *Addition) finish(err error) (AddResult, error) {
	res := a.Result()
	res.Success = err == nil && a.runner.Done()
	return res, err
}

func (a *Addition) Result() AddResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	res := AddResult{TopicID: a.topicID, UpdatedProfile: a.updated}
	if a.created {
		res.CreatedTopic = a.topicID
	}
	return res
}

func (a *Addition) execute(ctx context.Context, tx executor.Transaction) executor.Result {
	return a.m.exec.Execute(ctx, executor.Request{
		Transaction: tx,
		Signer:      a.m.cfg.Signer,
		Watcher:     a.m.cfg.Watcher,
	})
}

func buildFailure(err error) executor.Result {
	return executor.Result{Error: txerror.New(
		txerror.Unknown,
		fmt.Sprintf("Couldn't build the transaction: %s", err),
		err,
	)}
}

// createListTopic creates the topic and writes the item as its first
// message. A retry after the topic was created only resends the item.
func (a *Addition) createListTopic(ctx context.Context) executor.Result {
	a.mu.Lock()
	topicID := a.topicID
	a.mu.Unlock()

	if topicID == "" {
		res := a.createTopic(ctx)
		if !res.Success {
			return res
		}
		if res.Receipt == nil || res.Receipt.EntityID == "" {
			res.Success = false
			res.Error = txerror.New(
				txerror.TransactionFailed,
				fmt.Sprintf("Transaction %s created no topic.", res.TransactionID),
				res.Receipt,
			)
			return res
		}
		topicID = res.Receipt.EntityID
		a.mu.Lock()
		a.topicID, a.created = topicID, true
		a.mu.Unlock()
		a.m.topicCreated(topicID)
		a.m.logger.Info("list topic created", zap.String("topic", topicID), zap.String("tx", res.TransactionID))
	}
	return a.write(ctx, topicID)
}

// createTopic settles an earlier unconfirmed creation first and sends a
// new one only when there was none or the ledger rejected it.
func (a *Addition) createTopic(ctx context.Context) executor.Result {
	a.mu.Lock()
	pending := a.createTx
	a.mu.Unlock()

	if pending != "" {
		res := a.m.exec.Recheck(ctx, a.m.cfg.Watcher, pending)
		if res.Receipt == nil {
			return res
		}
		a.setCreateTx("")
		if res.Success {
			return res
		}
		a.m.logger.Info("earlier list topic creation failed, creating again",
			zap.String("tx", pending),
			zap.String("status", res.Receipt.Status),
		)
	}

	tx, err := a.m.cfg.Ledger.CreateTopic(a.m.cfg.Kind.Memo())
	if err != nil {
		return buildFailure(err)
	}
	res := a.execute(ctx, tx)
	if res.Submitted() && !res.Success && res.Receipt == nil {
		a.setCreateTx(res.TransactionID)
	}
	return res
}

func (a *Addition) setCreateTx(transactionID string) {
	a.mu.Lock()
	a.createTx = transactionID
	a.mu.Unlock()
}

// sendToList appends the item, unless createListTopic already wrote it.
func (a *Addition) sendToList(ctx context.Context) executor.Result {
	a.mu.Lock()
	topicID, written := a.topicID, a.written
	a.mu.Unlock()
	if written {
		return steps.Satisfied(ctx)
	}
	return a.write(ctx, topicID)
}

func (a *Addition) write(ctx context.Context, topicID string) executor.Result {
	payload, err := a.item.Encode()
	if err != nil {
		return buildFailure(err)
	}
	tx, err := a.m.cfg.Ledger.SubmitMessage(topicID, payload)
	if err != nil {
		return buildFailure(err)
	}
	res := a.execute(ctx, tx)
	if res.Success {
		a.mu.Lock()
		a.written = true
		a.mu.Unlock()
		a.m.cfg.Reader.Invalidate(topicID)
	}
	return res
}

func (a *Addition) updateProfile(ctx context.Context) executor.Result {
	a.mu.Lock()
	topicID := a.topicID
	a.mu.Unlock()

	ok, err := a.m.cfg.UpdateOwner(ctx, topicID, a.m.cfg.Kind)
	if err != nil {
		return executor.Result{Error: txerror.Classify(err)}
	}
	if !ok {
		return executor.Result{Error: txerror.New(
			txerror.Unknown,
			fmt.Sprintf("The profile was not updated to reference list topic %s.", topicID),
			nil,
		)}
	}
	a.mu.Lock()
	a.updated = true
	a.mu.Unlock()
	a.m.ownerLinked(topicID)
	return executor.Result{Success: true}
}

func (m *Manager) topicCreated(topicID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topicID = topicID
	m.linked = false
}

func (m *Manager) ownerLinked(topicID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.topicID == topicID {
		m.linked = true
	}
}

// FetchList returns the current list, empty while no topic exists.
func (m *Manager) FetchList(ctx context.Context) ([]Item, error) {
	topicID := m.TopicID()
	if topicID == "" {
		return nil, nil
	}
	return m.cfg.Reader.FetchList(ctx, m.cfg.Kind, topicID)
}

// RemoveItem appends a tombstone for key. Removing a key that is not in the
// list succeeds without a transaction. Like the executor it reports every
// failure in the result.
func (m *Manager) RemoveItem(ctx context.Context, key string) executor.Result {
	topicID := m.TopicID()
	if topicID == "" {
		return executor.Result{Success: true}
	}
	items, err := m.cfg.Reader.FetchList(ctx, m.cfg.Kind, topicID)
	if err != nil {
		ce := txerror.New(txerror.NetworkError, "Couldn't load the list. Please try again.", err)
		logging.Classified(m.logger, "list read failed", ce, zap.String("topic", topicID))
		return executor.Result{Error: ce}
	}
	if !Contains(m.cfg.Kind, items, key) {
		m.logger.Debug("removing absent key", zap.String("key", key))
		return executor.Result{Success: true}
	}

	payload, err := Tombstone(m.cfg.Kind, key).Encode()
	if err != nil {
		return buildFailure(err)
	}
	tx, err := m.cfg.Ledger.SubmitMessage(topicID, payload)
	if err != nil {
		return buildFailure(err)
	}
	res := m.exec.Execute(ctx, executor.Request{
		Transaction: tx,
		Signer:      m.cfg.Signer,
		Watcher:     m.cfg.Watcher,
	})
	if res.Success {
		m.cfg.Reader.Invalidate(topicID)
	}
	return res
}
