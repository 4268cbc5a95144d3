package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tranvictor/hsocial/hedera"
	"github.com/tranvictor/hsocial/logging"
	"github.com/tranvictor/hsocial/txerror"
	"github.com/tranvictor/hsocial/util/explorers"
)

const DefaultTimeout = 60 * time.Second

// Transaction is whatever the wallet SDK builds. The executor never looks
// inside it.
type Transaction interface{}

// Response is what the signer hands back after submitting.
type Response struct {
	TransactionID string
}

// Signer is the wallet capability. Returning (nil, nil) from either method
// means the wallet produced nothing, which is treated as a disconnect.
type Signer interface {
	Freeze(ctx context.Context, tx Transaction) (Transaction, error)
	Submit(ctx context.Context, signed Transaction) (*Response, error)
}

// ReceiptWatcher waits for the receipt of a submitted transaction. Its
// polling policy is its own.
type ReceiptWatcher interface {
	Watch(ctx context.Context, transactionID string) (*hedera.Receipt, error)
}

// Request describes one transaction to execute. A zero Timeout uses the
// executor's default.
type Request struct {
	Transaction Transaction
	Signer      Signer
	Watcher     ReceiptWatcher
	Timeout     time.Duration
}

// Result is the outcome of one Execute call. Exactly one of Success and
// Error != nil holds. An empty TransactionID means nothing reached the
// ledger.
type Result struct {
	Success       bool
	TransactionID string
	Receipt       *hedera.Receipt
	Error         *txerror.ClassifiedError
}

// Submitted reports whether the transaction was handed to the ledger.
func (r Result) Submitted() bool {
	return r.TransactionID != ""
}

// SafeToRetry reports whether resubmitting cannot produce a duplicate.
func (r Result) SafeToRetry() bool {
	return !r.Success && r.Error != nil && txerror.Retryable(r.Error.Type, r.TransactionID)
}

// Err returns the classified error as an error value, or nil on success.
func (r Result) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

func failure(transactionID string, receipt *hedera.Receipt, ce *txerror.ClassifiedError) Result {
	return Result{TransactionID: transactionID, Receipt: receipt, Error: ce}
}

type Executor struct {
	timeout  time.Duration
	explorer explorers.Explorer
	logger   *zap.Logger
}

type Option func(*Executor)

func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithExplorer makes unconfirmed results point the user at an explorer page
// for the transaction.
func WithExplorer(ex explorers.Explorer) Option {
	return func(e *Executor) { e.explorer = ex }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) { e.logger = logging.OrNop(l) }
}

func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExecutor = NewExecutor()

// Execute runs req with a default executor.
func Execute(ctx context.Context, req Request) Result {
	return defaultExecutor.Execute(ctx, req)
}

// Execute freezes, signs, submits and confirms one transaction, giving up
// after the timeout. It never returns an error: every failure is a Result
// with Success false.
//
// Giving up does not cancel the wallet or the watcher. They keep running
// against a context detached from ctx and their late result is dropped, so
// a timed out transaction may still land on the ledger.
func (e *Executor) Execute(ctx context.Context, req Request) Result {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = e.timeout
	}
	attempt := uuid.NewString()
	log := e.logger.With(zap.String("attempt", attempt))

	if req.Signer == nil {
		return e.finish(log, failure("", nil, txerror.New(
			txerror.WalletDisconnected,
			"No wallet is connected. Please connect your wallet and try again.",
			nil,
		)))
	}
	if req.Watcher == nil {
		return e.finish(log, failure("", nil, txerror.New(
			txerror.Unknown, "No receipt watcher configured.", nil,
		)))
	}

	submitted := make(chan string, 1)
	done := make(chan Result, 1)
	go func() {
		done <- e.run(context.WithoutCancel(ctx), req, submitted, log)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	// lastID is the id seen before giving up, if the submit already happened
	lastID := ""
	for {
		select {
		case id := <-submitted:
			lastID = id
		case res := <-done:
			return e.finish(log, res)
		case <-timer.C:
			return e.finish(log, e.timedOut(lastID, timeout))
		case <-ctx.Done():
			return e.finish(log, e.timedOut(lastID, timeout))
		}
	}
}

func (e *Executor) timedOut(transactionID string, timeout time.Duration) Result {
	msg := fmt.Sprintf("The transaction did not complete within %s. It may still have been processed.", timeout)
	if transactionID != "" {
		msg += " " + e.checkExplorer(transactionID)
	}
	return failure(transactionID, nil, txerror.New(txerror.Timeout, msg, nil))
}

func (e *Executor) checkExplorer(transactionID string) string {
	if e.explorer != nil {
		return fmt.Sprintf(
			"Check %s before retrying: %s",
			e.explorer.Name(),
			e.explorer.TransactionURL(transactionID),
		)
	}
	return fmt.Sprintf("Check transaction %s on a ledger explorer before retrying.", transactionID)
}

func (e *Executor) run(ctx context.Context, req Request, submitted chan<- string, log *zap.Logger) Result {
	signed, err := req.Signer.Freeze(ctx, req.Transaction)
	if err != nil {
		return failure("", nil, txerror.Classify(err))
	}
	if signed == nil {
		return failure("", nil, txerror.New(
			txerror.WalletDisconnected,
			"The wallet did not return a signed transaction. Please reconnect your wallet.",
			nil,
		))
	}

	resp, err := req.Signer.Submit(ctx, signed)
	if err != nil {
		return failure("", nil, txerror.Classify(err))
	}
	if resp == nil || resp.TransactionID == "" {
		return failure("", nil, txerror.New(
			txerror.WalletDisconnected,
			"The wallet did not submit the transaction. Please reconnect your wallet.",
			nil,
		))
	}
	transactionID := resp.TransactionID
	submitted <- transactionID
	log.Debug("transaction submitted", zap.String("tx", transactionID))
	return e.confirm(ctx, req.Watcher, transactionID)
}

// Recheck watches again for the receipt of a transaction an earlier
// Execute submitted but could not confirm. It never submits anything, so
// callers use it to settle an unconfirmed write before deciding to send a
// new one.
func (e *Executor) Recheck(ctx context.Context, watcher ReceiptWatcher, transactionID string) Result {
	log := e.logger.With(zap.String("tx", transactionID))
	if watcher == nil {
		return e.finish(log, failure(transactionID, nil, txerror.New(
			txerror.Unknown, "No receipt watcher configured.", nil,
		)))
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.finish(log, e.confirm(ctx, watcher, transactionID))
}

func (e *Executor) confirm(ctx context.Context, watcher ReceiptWatcher, transactionID string) Result {
	receipt, err := watcher.Watch(ctx, transactionID)
	if err != nil {
		ce := txerror.Classify(err)
		if ce.Type == txerror.UserRejected {
			return failure(transactionID, nil, ce)
		}
		return failure(transactionID, nil, &txerror.ClassifiedError{
			Type: txerror.NetworkError,
			Message: fmt.Sprintf(
				"Transaction %s was submitted but could not be confirmed. %s",
				transactionID,
				e.checkExplorer(transactionID),
			),
			OriginalError: err,
			ShouldLog:     true,
		})
	}
	if receipt == nil {
		return failure(transactionID, nil, txerror.New(
			txerror.NetworkError,
			fmt.Sprintf("Transaction %s returned an empty receipt. %s", transactionID, e.checkExplorer(transactionID)),
			nil,
		))
	}
	if !receipt.IsSuccess() {
		return failure(transactionID, receipt, txerror.New(
			txerror.TransactionFailed,
			fmt.Sprintf("Transaction failed: %s", receipt.Status),
			receipt,
		))
	}
	return Result{Success: true, TransactionID: transactionID, Receipt: receipt}
}

func (e *Executor) finish(log *zap.Logger, res Result) Result {
	if res.Success {
		log.Info("transaction confirmed",
			zap.String("tx", res.TransactionID),
			zap.String("status", res.Receipt.Status),
		)
		return res
	}
	logging.Classified(log, "transaction failed", res.Error,
		zap.String("tx", res.TransactionID),
		zap.Bool("submitted", res.Submitted()),
	)
	return res
}
