package reader

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func newMirror(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/topics/0.0.9/messages", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "asc", r.URL.Query().Get("order"))
		switch r.URL.Query().Get("sequence_number") {
		case "":
			fmt.Fprintf(w, `{"messages":[
				{"consensus_timestamp":"1.1","topic_id":"0.0.9","payer_account_id":"0.0.2","sequence_number":1,"message":%q},
				{"consensus_timestamp":"1.2","topic_id":"0.0.9","payer_account_id":"0.0.2","sequence_number":2,"message":%q}
			],"links":{"next":"/api/v1/topics/0.0.9/messages?limit=2&order=asc&sequence_number=gt:2"}}`,
				b64(`{"Channel":"0.0.100"}`), b64(`{"Channel":"0.0.101"}`))
		case "gt:2":
			fmt.Fprintf(w, `{"messages":[
				{"consensus_timestamp":"1.3","topic_id":"0.0.9","payer_account_id":"0.0.2","sequence_number":3,"message":%q}
			],"links":{"next":null}}`, b64(`{"Channel":"0.0.102"}`))
		default:
			t.Errorf("unexpected page %s", r.URL.RawQuery)
		}
	})
	mux.HandleFunc("/api/v1/topics/0.0.404/messages", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"_status":{"messages":[{"message":"Not found"}]}}`)
	})
	mux.HandleFunc("/api/v1/transactions/0.0.2-1700000000-000000001", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"transactions":[
			{"consensus_timestamp":"2.1","entity_id":null,"name":"CONTRACTCALL","nonce":1,"result":"SUCCESS","scheduled":false,"transaction_id":"0.0.2-1700000000-000000001"},
			{"consensus_timestamp":"2.0","entity_id":"0.0.555","name":"CONSENSUSCREATETOPIC","nonce":0,"result":"SUCCESS","scheduled":false,"transaction_id":"0.0.2-1700000000-000000001"}
		]}`)
	})
	mux.HandleFunc("/api/v1/accounts/0.0.2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"account":"0.0.2","memo":"profile:0.0.77","evm_address":"0x0000000000000000000000000000000000000002"}`)
	})
	mux.HandleFunc("/api/v1/topics/0.0.9", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"topic_id":"0.0.9","memo":"channels"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestTopicMessagesFollowsNextLinks(t *testing.T) {
	srv := newMirror(t)
	node := NewOneNodeReader("local", srv.URL, WithPageSize(2))

	msgs, err := node.TopicMessages(context.Background(), "0.0.9")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i, m := range msgs {
		assert.Equal(t, int64(i+1), m.SequenceNumber)
	}
	decoded, err := msgs[2].Decode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"Channel":"0.0.102"}`, string(decoded))
}

func TestTopicMessagesNotFound(t *testing.T) {
	srv := newMirror(t)
	node := NewOneNodeReader("local", srv.URL)
	_, err := node.TopicMessages(context.Background(), "0.0.404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReceiptPicksParentRecord(t *testing.T) {
	srv := newMirror(t)
	node := NewOneNodeReader("local", srv.URL)

	receipt, err := node.Receipt(context.Background(), "0.0.2@1700000000.000000001")
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", receipt.Status)
	assert.Equal(t, "0.0.555", receipt.EntityID)
	assert.True(t, receipt.IsSuccess())
}

func TestMirrorReaderFallsBackAcrossNodes(t *testing.T) {
	srv := newMirror(t)
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(broken.Close)

	mr := NewMirrorReaderGeneric(map[string]string{
		"a-broken": broken.URL,
		"b-good":   srv.URL,
	})
	require.Len(t, mr.Nodes(), 2)

	msgs, err := mr.TopicMessages(context.Background(), "0.0.9")
	require.NoError(t, err)
	assert.Len(t, msgs, 3)

	acc, err := mr.Account(context.Background(), "0.0.2")
	require.NoError(t, err)
	assert.Equal(t, "profile:0.0.77", acc.Memo)

	topic, err := mr.Topic(context.Background(), "0.0.9")
	require.NoError(t, err)
	assert.Equal(t, "channels", topic.Memo)
}

func TestMirrorReaderAllNodesFail(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, "slow down")
	}))
	t.Cleanup(broken.Close)

	mr := NewMirrorReader(NewOneNodeReader("only", broken.URL))
	_, err := mr.Receipt(context.Background(), "0.0.2@1.1")
	require.Error(t, err)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.True(t, httpErr.Temporary())
	assert.True(t, strings.Contains(err.Error(), "only"))

	_, err = NewMirrorReader().Account(context.Background(), "0.0.2")
	assert.Error(t, err)
}

func TestTopicMessagesDetectsPaginationLoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"messages":[],"links":{"next":"/api/v1/topics/0.0.1/messages?limit=100&order=asc"}}`)
	}))
	t.Cleanup(srv.Close)

	_, err := NewOneNodeReader("loop", srv.URL).TopicMessages(context.Background(), "0.0.1")
	assert.ErrorContains(t, err, "pagination loop")
}
