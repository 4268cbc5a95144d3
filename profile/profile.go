package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tranvictor/hsocial/hedera"
	"github.com/tranvictor/hsocial/listtopic"
	"github.com/tranvictor/hsocial/util/reader"
)

const (
	RecordType = "Profile"
	// Version 2 records reference list topics; version 1 embedded the
	// lists. Both are still read.
	Version = "2"
)

var ErrNoProfile = errors.New("no profile found")

// OwnerListField is either an Embedded list or a Referenced topic.
type OwnerListField interface {
	isOwnerListField()
}

// Embedded is a list stored inline in the profile record.
type Embedded struct {
	Items []listtopic.Item
}

// Referenced points at the topic that holds the list.
type Referenced struct {
	TopicID string
}

func (Embedded) isOwnerListField()   {}
func (Referenced) isOwnerListField() {}

func decodeListField(raw json.RawMessage) (OwnerListField, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	switch raw[0] {
	case '[':
		var items []listtopic.Item
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return Embedded{Items: items}, nil
	case '"':
		var topicID string
		if err := json.Unmarshal(raw, &topicID); err != nil {
			return nil, err
		}
		if topicID == "" {
			return nil, nil
		}
		return Referenced{TopicID: topicID}, nil
	}
	return nil, fmt.Errorf("list field must be an array or a topic id, got %s", raw)
}

func encodeListField(f OwnerListField) (json.RawMessage, error) {
	switch v := f.(type) {
	case nil:
		return nil, nil
	case Embedded:
		return json.Marshal(v.Items)
	case Referenced:
		return json.Marshal(v.TopicID)
	}
	return nil, fmt.Errorf("unsupported list field %T", f)
}

// Profile is the owner record published on the profile topic.
type Profile struct {
	Type           string
	Version        string
	Name           string
	Bio            string
	Website        string
	ProfilePicture string
	Channels       OwnerListField
	Groups         OwnerListField
	Following      OwnerListField
}

type wireProfile struct {
	Type           string          `json:"Type"`
	Version        string          `json:"Version"`
	Name           string          `json:"Name"`
	Bio            string          `json:"Bio,omitempty"`
	Website        string          `json:"Website,omitempty"`
	ProfilePicture string          `json:"ProfilePicture,omitempty"`
	Channels       json.RawMessage `json:"Channels,omitempty"`
	Groups         json.RawMessage `json:"Groups,omitempty"`
	Following      json.RawMessage `json:"Following,omitempty"`
}

func (p Profile) MarshalJSON() ([]byte, error) {
	w := wireProfile{
		Type:           p.Type,
		Version:        p.Version,
		Name:           p.Name,
		Bio:            p.Bio,
		Website:        p.Website,
		ProfilePicture: p.ProfilePicture,
	}
	if w.Type == "" {
		w.Type = RecordType
	}
	if w.Version == "" {
		w.Version = Version
	}
	var err error
	if w.Channels, err = encodeListField(p.Channels); err != nil {
		return nil, err
	}
	if w.Groups, err = encodeListField(p.Groups); err != nil {
		return nil, err
	}
	if w.Following, err = encodeListField(p.Following); err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	var w wireProfile
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := Profile{
		Type:           w.Type,
		Version:        w.Version,
		Name:           w.Name,
		Bio:            w.Bio,
		Website:        w.Website,
		ProfilePicture: w.ProfilePicture,
	}
	var err error
	if out.Channels, err = decodeListField(w.Channels); err != nil {
		return fmt.Errorf("channels field: %w", err)
	}
	if out.Groups, err = decodeListField(w.Groups); err != nil {
		return fmt.Errorf("groups field: %w", err)
	}
	if out.Following, err = decodeListField(w.Following); err != nil {
		return fmt.Errorf("following field: %w", err)
	}
	*p = out
	return nil
}

// ListField returns the field holding the kind list.
func (p Profile) ListField(kind listtopic.Kind) OwnerListField {
	switch kind {
	case listtopic.Channels:
		return p.Channels
	case listtopic.Groups:
		return p.Groups
	case listtopic.Following:
		return p.Following
	}
	return nil
}

// WithListTopic returns a copy of p whose kind list references topicID.
// Other fields are left alone.
func (p Profile) WithListTopic(kind listtopic.Kind, topicID string) Profile {
	ref := Referenced{TopicID: topicID}
	switch kind {
	case listtopic.Channels:
		p.Channels = ref
	case listtopic.Groups:
		p.Groups = ref
	case listtopic.Following:
		p.Following = ref
	}
	p.Version = Version
	return p
}

// ListTopicID returns the topic the kind list lives on, empty for missing
// and embedded lists.
func (p Profile) ListTopicID(kind listtopic.Kind) string {
	if ref, ok := p.ListField(kind).(Referenced); ok {
		return ref.TopicID
	}
	return ""
}

// ResolveList returns the kind list whichever way it is stored.
func (p Profile) ResolveList(ctx context.Context, kind listtopic.Kind, r *listtopic.Reader) ([]listtopic.Item, error) {
	switch f := p.ListField(kind).(type) {
	case nil:
		return nil, nil
	case Embedded:
		return listtopic.Materialize(kind, f.Items), nil
	case Referenced:
		return r.FetchList(ctx, kind, f.TopicID)
	default:
		return nil, fmt.Errorf("unsupported list field %T", f)
	}
}

// Load replays the profile topic; the last valid profile record wins.
func Load(ctx context.Context, source listtopic.MessageSource, topicID string) (Profile, error) {
	msgs, err := source.TopicMessages(ctx, topicID)
	if err != nil {
		return Profile{}, fmt.Errorf("couldn't read profile topic %s: %w", topicID, err)
	}
	var found bool
	var latest Profile
	for _, msg := range msgs {
		data, err := msg.Decode()
		if err != nil {
			continue
		}
		var p Profile
		if json.Unmarshal(data, &p) != nil || p.Type != RecordType {
			continue
		}
		latest, found = p, true
	}
	if !found {
		return Profile{}, fmt.Errorf("%w on topic %s", ErrNoProfile, topicID)
	}
	return latest, nil
}

// AccountSource looks up account records. *reader.MirrorReader satisfies
// it.
type AccountSource interface {
	Account(ctx context.Context, accountID string) (*reader.AccountInfo, error)
}

// TopicFromMemo extracts the profile topic an account memo points at.
func TopicFromMemo(memo string) (string, bool) {
	memo = strings.TrimSpace(memo)
	if !hedera.IsEntityID(memo) {
		return "", false
	}
	return memo, true
}

// FindTopic returns the profile topic referenced by accountID's memo.
func FindTopic(ctx context.Context, accounts AccountSource, accountID string) (string, error) {
	info, err := accounts.Account(ctx, accountID)
	if err != nil {
		return "", err
	}
	topicID, ok := TopicFromMemo(info.Memo)
	if !ok {
		return "", fmt.Errorf("%w: account %s memo %q is not a topic id", ErrNoProfile, accountID, info.Memo)
	}
	return topicID, nil
}
