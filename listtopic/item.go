package listtopic

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// RemovedField marks a tombstone message. A tombstone carries only the key
// field and this flag.
const RemovedField = "_removed"

var ErrMissingKey = errors.New("item has no key")

// Item is one list entry as stored on the topic: a flat JSON object whose
// key field depends on the list kind.
type Item map[string]any

// Key returns the value of kind's key field.
func (it Item) Key(kind Kind) (string, bool) {
	v, ok := it[kind.KeyField()].(string)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Removed reports whether it is a tombstone.
func (it Item) Removed() bool {
	b, _ := it[RemovedField].(bool)
	return b
}

func (it Item) Validate(kind Kind) error {
	if _, ok := it.Key(kind); !ok {
		return fmt.Errorf("%w: %s list items need a %q field", ErrMissingKey, kind, kind.KeyField())
	}
	if it.Removed() {
		return fmt.Errorf("%q is reserved for removals", RemovedField)
	}
	return nil
}

func (it Item) Encode() ([]byte, error) {
	return json.Marshal(it)
}

func Tombstone(kind Kind, key string) Item {
	return Item{kind.KeyField(): key, RemovedField: true}
}

func DecodeItem(data []byte) (Item, error) {
	var it Item
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, err
	}
	if it == nil {
		return nil, errors.New("message is not a JSON object")
	}
	return it, nil
}

// Materialize folds records, in consensus order, into the current list:
// the last write for a key wins and keeps the key's position, a tombstone
// drops the key, and a key added again after removal goes to the end.
// Records without a key are ignored.
func Materialize(kind Kind, records []Item) []Item {
	pos := map[string]int{}
	var out []Item
	for _, rec := range records {
		key, ok := rec.Key(kind)
		if !ok {
			continue
		}
		i, present := pos[key]
		if rec.Removed() {
			if present {
				out[i] = nil
				delete(pos, key)
			}
			continue
		}
		if present {
			out[i] = rec
			continue
		}
		pos[key] = len(out)
		out = append(out, rec)
	}
	items := make([]Item, 0, len(pos))
	for _, it := range out {
		if it != nil {
			items = append(items, it)
		}
	}
	return items
}

// Contains reports whether items has an entry for key.
func Contains(kind Kind, items []Item, key string) bool {
	for _, it := range items {
		if k, _ := it.Key(kind); k == key {
			return true
		}
	}
	return false
}
