package listtopic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// DefaultSearchLimit caps how many matches Search returns.
const DefaultSearchLimit = 10

// SearchSource lets fuzzy match a list by key and by the text of its
// other fields.
type SearchSource struct {
	kind  Kind
	items []Item
}

func NewSearchSource(kind Kind, items []Item) SearchSource {
	return SearchSource{kind: kind, items: items}
}

func (s SearchSource) Len() int {
	return len(s.items)
}

// String is the searchable text of item i: its key followed by its other
// string fields, sorted by field name, joined with underscores.
func (s SearchSource) String(i int) string {
	it := s.items[i]
	key, _ := it.Key(s.kind)
	parts := []string{key}
	for _, field := range it.FieldNames(s.kind) {
		if v, ok := it[field].(string); ok && v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Replace(strings.Join(parts, "_"), " ", "_", -1)
}

// Match is one Search hit.
type Match struct {
	Item  Item
	Score int
}

// Search fuzzy matches query against items, best first. limit <= 0 means
// DefaultSearchLimit.
func Search(kind Kind, items []Item, query string, limit int) ([]Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	source := NewSearchSource(kind, items)
	matches := fuzzy.FindFrom(strings.Replace(query, " ", "_", -1), source)
	result := []Match{}
	for i := 0; i < limit && i < len(matches); i++ {
		result = append(result, Match{
			Item:  items[matches[i].Index],
			Score: matches[i].Score,
		})
	}
	return result, nil
}

// FieldNames returns the item's field names except the key field and the
// removal marker, sorted.
func (it Item) FieldNames(kind Kind) []string {
	names := make([]string, 0, len(it))
	for name := range it {
		if name == kind.KeyField() || name == RemovedField {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
