package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tranvictor/hsocial/executor"
	"github.com/tranvictor/hsocial/logging"
	"github.com/tranvictor/hsocial/steps"
	"github.com/tranvictor/hsocial/txerror"
)

const (
	StepUploadIcon         = "uploadIcon"
	StepCreateProfileTopic = "createProfileTopic"
	StepPublishProfile     = "publishProfile"
	StepUpdateAccountMemo  = "updateAccountMemo"

	profileTopicMemo = "hsocial profile"
)

// CreationInputs are what the user filled in. Icon is optional.
type CreationInputs struct {
	Name    string
	Bio     string
	Website string
	Icon    []byte
}

func (in CreationInputs) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("a profile needs a name")
	}
	return nil
}

type CreationDeps struct {
	Ledger      Ledger
	Signer      executor.Signer
	Watcher     executor.ReceiptWatcher
	Executor    *executor.Executor
	SettleDelay time.Duration
	Logger      *zap.Logger
	Observer    steps.Observer
}

// CreationResult reports what a creation did. MemoUpdated is set once the
// account memo points at TopicID.
type CreationResult struct {
	Success     bool
	TopicID     string
	IconFile    string
	Profile     Profile
	MemoUpdated bool
}

// Creation is one profile creation flow: upload the icon when there is
// one, create the profile topic, publish the record to it, then point the
// account memo at the topic.
type Creation struct {
	inputs CreationInputs
	deps   CreationDeps
	exec   *executor.Executor
	logger *zap.Logger
	runner *steps.Runner

	mu       sync.Mutex
	iconFile string
	topicID  string
	profile  Profile
	memoSet  bool
	// creations submitted but never confirmed
	iconTx  string
	topicTx string
}

// CreationPlan lists the steps a creation from inputs takes.
func CreationPlan(inputs CreationInputs, c *Creation) steps.Plan {
	return steps.Plan{}.
		With(len(inputs.Icon) > 0, steps.Step{Name: StepUploadIcon, Action: c.uploadIcon}).
		With(true, steps.Step{Name: StepCreateProfileTopic, Action: c.createProfileTopic}).
		With(true, steps.Step{Name: StepPublishProfile, Action: c.publishProfile}).
		With(true, steps.Step{Name: StepUpdateAccountMemo, Action: c.updateAccountMemo})
}

func NewCreation(inputs CreationInputs, deps CreationDeps) (*Creation, error) {
	if err := inputs.Validate(); err != nil {
		return nil, err
	}
	if deps.Ledger == nil {
		return nil, errors.New("profile creation needs a ledger")
	}
	exec := deps.Executor
	if exec == nil {
		exec = executor.NewExecutor(executor.WithLogger(deps.Logger))
	}
	c := &Creation{
		inputs: inputs,
		deps:   deps,
		exec:   exec,
		logger: logging.OrNop(deps.Logger).With(zap.String("flow", "profile")),
	}
	delay := deps.SettleDelay
	if delay <= 0 {
		delay = steps.DefaultSettleDelay
	}
	c.runner = steps.NewRunner(CreationPlan(inputs, c),
		steps.WithSettleDelay(delay),
		steps.WithLogger(c.logger),
		steps.WithObserver(deps.Observer),
	)
	return c, nil
}

func (c *Creation) Runner() *steps.Runner {
	return c.runner
}

// Reset starts the flow over. Topics and files already created stay on the
// ledger and are not reused.
func (c *Creation) Reset() {
	c.mu.Lock()
	c.iconFile, c.topicID, c.profile, c.memoSet = "", "", Profile{}, false
	c.iconTx, c.topicTx = "", ""
	c.mu.Unlock()
	c.runner.Reset()
}

// Run drives the remaining steps. Called again it resumes from a failed
// step that is safe to retry; a step whose transaction was submitted needs
// Retry.
func (c *Creation) Run(ctx context.Context) (CreationResult, error) {
	return c.result(c.runner.Run(ctx))
}

// Retry restarts the failed step even if its transaction was submitted.
func (c *Creation) Retry(ctx context.Context) (CreationResult, error) {
	return c.result(c.runner.Retry(ctx))
}

func (c *Creation) result(err error) (CreationResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CreationResult{
		Success:     err == nil && c.runner.Done(),
		TopicID:     c.topicID,
		IconFile:    c.iconFile,
		Profile:     c.profile,
		MemoUpdated: c.memoSet,
	}, err
}

func (c *Creation) execute(ctx context.Context, tx executor.Transaction, err error) executor.Result {
	if err != nil {
		return buildFailure(err)
	}
	return c.exec.Execute(ctx, executor.Request{
		Transaction: tx,
		Signer:      c.deps.Signer,
		Watcher:     c.deps.Watcher,
	})
}

func requireEntity(res executor.Result, what string) (string, executor.Result) {
	if !res.Success {
		return "", res
	}
	if res.Receipt == nil || res.Receipt.EntityID == "" {
		res.Success = false
		res.Error = txerror.New(
			txerror.TransactionFailed,
			fmt.Sprintf("Transaction %s created no %s.", res.TransactionID, what),
			res.Receipt,
		)
		return "", res
	}
	return res.Receipt.EntityID, res
}

// create sends a transaction that creates an entity. A creation that was
// submitted but never confirmed is looked up first and resent only when the
// ledger rejected it.
func (c *Creation) create(ctx context.Context, pending *string, build func() (executor.Transaction, error)) executor.Result {
	c.mu.Lock()
	txID := *pending
	c.mu.Unlock()

	if txID != "" {
		res := c.exec.Recheck(ctx, c.deps.Watcher, txID)
		if res.Receipt == nil {
			return res
		}
		c.mu.Lock()
		*pending = ""
		c.mu.Unlock()
		if res.Success {
			return res
		}
		c.logger.Info("earlier creation failed, sending it again", zap.String("tx", txID), zap.String("status", res.Receipt.Status))
	}

	tx, err := build()
	res := c.execute(ctx, tx, err)
	if res.Submitted() && !res.Success && res.Receipt == nil {
		c.mu.Lock()
		*pending = res.TransactionID
		c.mu.Unlock()
	}
	return res
}

func (c *Creation) uploadIcon(ctx context.Context) executor.Result {
	fileID, res := requireEntity(c.create(ctx, &c.iconTx, func() (executor.Transaction, error) {
		return c.deps.Ledger.UploadFile(c.inputs.Icon)
	}), "file")
	if fileID != "" {
		c.mu.Lock()
		c.iconFile = fileID
		c.mu.Unlock()
	}
	return res
}

func (c *Creation) createProfileTopic(ctx context.Context) executor.Result {
	topicID, res := requireEntity(c.create(ctx, &c.topicTx, func() (executor.Transaction, error) {
		return c.deps.Ledger.CreateTopic(profileTopicMemo)
	}), "topic")
	if topicID != "" {
		c.mu.Lock()
		c.topicID = topicID
		c.mu.Unlock()
	}
	return res
}

func (c *Creation) publishProfile(ctx context.Context) executor.Result {
	c.mu.Lock()
	p := Profile{
		Type:           RecordType,
		Version:        Version,
		Name:           strings.TrimSpace(c.inputs.Name),
		Bio:            c.inputs.Bio,
		Website:        c.inputs.Website,
		ProfilePicture: c.iconFile,
	}
	topicID := c.topicID
	c.mu.Unlock()

	payload, err := json.Marshal(p)
	if err != nil {
		return buildFailure(err)
	}
	tx, err := c.deps.Ledger.SubmitMessage(topicID, payload)
	res := c.execute(ctx, tx, err)
	if res.Success {
		c.mu.Lock()
		c.profile = p
		c.mu.Unlock()
	}
	return res
}

func (c *Creation) updateAccountMemo(ctx context.Context) executor.Result {
	c.mu.Lock()
	topicID := c.topicID
	c.mu.Unlock()

	tx, err := c.deps.Ledger.UpdateAccountMemo(topicID)
	res := c.execute(ctx, tx, err)
	if res.Success {
		c.mu.Lock()
		c.memoSet = true
		c.mu.Unlock()
	}
	return res
}

func buildFailure(err error) executor.Result {
	return executor.Result{Error: txerror.New(
		txerror.Unknown,
		fmt.Sprintf("Couldn't build the transaction: %s", err),
		err,
	)}
}
