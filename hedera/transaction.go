package hedera

import (
	"fmt"
	"strings"
)

// TransactionID is the payer account plus the valid-start timestamp,
// written by wallets as "0.0.123@1700000000.000000001".
type TransactionID struct {
	Payer     EntityID
	Seconds   string
	Nanos     string
	Scheduled bool
}

// ParseTransactionID accepts both the SDK form (0.0.123@1700000000.000000001)
// and the mirror node form (0.0.123-1700000000-000000001). A trailing
// "?scheduled" marker is kept.
func ParseTransactionID(s string) (TransactionID, error) {
	s = strings.TrimSpace(s)
	scheduled := false
	if strings.HasSuffix(s, "?scheduled") {
		scheduled = true
		s = strings.TrimSuffix(s, "?scheduled")
	}

	var payer, ts string
	if at := strings.Index(s, "@"); at >= 0 {
		payer, ts = s[:at], s[at+1:]
	} else {
		parts := strings.Split(s, "-")
		if len(parts) != 3 {
			return TransactionID{}, fmt.Errorf("invalid transaction id %q", s)
		}
		payer, ts = parts[0], parts[1]+"."+parts[2]
	}

	acc, err := ParseEntityID(payer)
	if err != nil {
		return TransactionID{}, fmt.Errorf("invalid transaction id %q: %w", s, err)
	}
	secs, nanos, found := strings.Cut(ts, ".")
	if !found || secs == "" || nanos == "" || !isDigits(secs) || !isDigits(nanos) {
		return TransactionID{}, fmt.Errorf("invalid transaction id %q: bad valid start %q", s, ts)
	}
	return TransactionID{
		Payer:     acc,
		Seconds:   secs,
		Nanos:     nanos,
		Scheduled: scheduled,
	}, nil
}

func (id TransactionID) String() string {
	s := fmt.Sprintf("%s@%s.%s", id.Payer, id.Seconds, id.Nanos)
	if id.Scheduled {
		s += "?scheduled"
	}
	return s
}

// MirrorFormat is the form the mirror REST API expects in
// /api/v1/transactions/{id}. Nanos are zero padded to 9 digits.
func (id TransactionID) MirrorFormat() string {
	nanos := id.Nanos
	if len(nanos) < 9 {
		nanos = strings.Repeat("0", 9-len(nanos)) + nanos
	}
	return fmt.Sprintf("%s-%s-%s", id.Payer, id.Seconds, nanos)
}

// ToMirrorFormat converts a transaction id string to mirror node form,
// returning the input unchanged if it cannot be parsed.
func ToMirrorFormat(s string) string {
	id, err := ParseTransactionID(s)
	if err != nil {
		return s
	}
	return id.MirrorFormat()
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
