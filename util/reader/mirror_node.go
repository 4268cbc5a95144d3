package reader

import (
	"context"

	"github.com/tranvictor/hsocial/hedera"
)

// MirrorNode is a single mirror node REST endpoint.
type MirrorNode interface {
	NodeName() string
	NodeURL() string
	TopicMessages(ctx context.Context, topicID string) ([]TopicMessage, error)
	Topic(ctx context.Context, topicID string) (*TopicInfo, error)
	Transaction(ctx context.Context, transactionID string) ([]TransactionRecord, error)
	Receipt(ctx context.Context, transactionID string) (*hedera.Receipt, error)
	Account(ctx context.Context, accountID string) (*AccountInfo, error)
}
