package listtopic

import (
	"fmt"
	"strings"
)

// Kind names one of the owner's lists. Each kind keys its items on a
// different field.
type Kind string

const (
	Channels  Kind = "channels"
	Groups    Kind = "groups"
	Following Kind = "following"
)

var kinds = map[Kind]string{
	Channels:  "Channel",
	Groups:    "Group",
	Following: "Account",
}

func AllKinds() []Kind {
	return []Kind{Channels, Groups, Following}
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := kinds[k]; !ok {
		return "", fmt.Errorf("unknown list kind %q, expected one of channels, groups, following", s)
	}
	return k, nil
}

// KeyField is the item field that identifies an entry in the list.
func (k Kind) KeyField() string {
	return kinds[k]
}

// Memo is the memo put on a newly created list topic.
func (k Kind) Memo() string {
	return fmt.Sprintf("hsocial %s list", k)
}
