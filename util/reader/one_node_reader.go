package reader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tranvictor/hsocial/hedera"
	"github.com/tranvictor/hsocial/logging"
)

const (
	TIMEOUT           time.Duration = 10 * time.Second
	DEFAULT_PAGE_SIZE int           = 100
	// a full replay stops here even if the node keeps returning next links
	MAX_PAGES int = 10000
)

type OneNodeReader struct {
	nodeName string
	nodeURL  string
	client   *http.Client
	pageSize int
	logger   *zap.Logger
}

type NodeOption func(*OneNodeReader)

func WithHTTPClient(c *http.Client) NodeOption {
	return func(onr *OneNodeReader) { onr.client = c }
}

func WithPageSize(n int) NodeOption {
	return func(onr *OneNodeReader) {
		if n > 0 {
			onr.pageSize = n
		}
	}
}

func WithLogger(l *zap.Logger) NodeOption {
	return func(onr *OneNodeReader) { onr.logger = logging.OrNop(l) }
}

func NewOneNodeReader(name, nodeURL string, opts ...NodeOption) *OneNodeReader {
	onr := &OneNodeReader{
		nodeName: name,
		nodeURL:  strings.TrimRight(nodeURL, "/"),
		client:   &http.Client{Timeout: TIMEOUT},
		pageSize: DEFAULT_PAGE_SIZE,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(onr)
	}
	return onr
}

func (onr *OneNodeReader) NodeName() string {
	return onr.nodeName
}

func (onr *OneNodeReader) NodeURL() string {
	return onr.nodeURL
}

// resolve turns an API path or a relative "next" link into an absolute URL.
func (onr *OneNodeReader) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return onr.nodeURL + path
}

func (onr *OneNodeReader) getJSON(ctx context.Context, path string, result interface{}) error {
	u := onr.resolve(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("couldn't build request to %s: %w", u, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := onr.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", onr.nodeName, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: couldn't read response: %w", onr.nodeName, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", u, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{URL: u, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf(
			"couldn't unmarshal %s from %s, err: %w",
			string(body),
			u,
			err,
		)
	}
	return nil
}

// TopicMessages replays the whole topic in consensus order by following
// links.next until the node stops returning one.
func (onr *OneNodeReader) TopicMessages(ctx context.Context, topicID string) ([]TopicMessage, error) {
	next := fmt.Sprintf(
		"/api/v1/topics/%s/messages?limit=%d&order=asc",
		url.PathEscape(topicID),
		onr.pageSize,
	)
	result := []TopicMessage{}
	seen := map[string]bool{}
	for page := 0; next != ""; page++ {
		if page >= MAX_PAGES {
			return nil, fmt.Errorf("topic %s: gave up after %d pages", topicID, MAX_PAGES)
		}
		if seen[next] {
			return nil, fmt.Errorf("topic %s: mirror node returned a pagination loop at %s", topicID, next)
		}
		seen[next] = true

		resp := topicMessagesResponse{}
		if err := onr.getJSON(ctx, next, &resp); err != nil {
			return nil, err
		}
		result = append(result, resp.Messages...)
		next = resp.Links.Next
		onr.logger.Debug("fetched topic page",
			zap.String("topic", topicID),
			zap.Int("page", page),
			zap.Int("messages", len(resp.Messages)),
		)
	}
	return result, nil
}

func (onr *OneNodeReader) Topic(ctx context.Context, topicID string) (*TopicInfo, error) {
	info := TopicInfo{}
	if err := onr.getJSON(ctx, "/api/v1/topics/"+url.PathEscape(topicID), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (onr *OneNodeReader) Transaction(ctx context.Context, transactionID string) ([]TransactionRecord, error) {
	resp := transactionsResponse{}
	path := "/api/v1/transactions/" + url.PathEscape(hedera.ToMirrorFormat(transactionID))
	if err := onr.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	if len(resp.Transactions) == 0 {
		return nil, fmt.Errorf("%s: %w", transactionID, ErrNotFound)
	}
	return resp.Transactions, nil
}

// Receipt returns the outcome of the parent (non-child, non-scheduled)
// record of the transaction.
func (onr *OneNodeReader) Receipt(ctx context.Context, transactionID string) (*hedera.Receipt, error) {
	records, err := onr.Transaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	parent := records[0]
	for _, r := range records {
		if r.Nonce == 0 && !r.Scheduled {
			parent = r
			break
		}
	}
	return &hedera.Receipt{
		Status:             parent.Result,
		EntityID:           parent.EntityID,
		TransactionID:      parent.TransactionID,
		ConsensusTimestamp: parent.ConsensusTimestamp,
	}, nil
}

func (onr *OneNodeReader) Account(ctx context.Context, accountID string) (*AccountInfo, error) {
	info := AccountInfo{}
	if err := onr.getJSON(ctx, "/api/v1/accounts/"+url.PathEscape(accountID), &info); err != nil {
		return nil, err
	}
	return &info, nil
}
