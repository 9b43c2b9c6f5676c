// Package memory remembers values the user typed into earlier forms and
// offers them for fields the model could not resolve.
package memory

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// minFuzzyKeyLen guards containment lookups: keys and queries of this many
// characters or fewer only ever match exactly.
const minFuzzyKeyLen = 3

// Entry is one remembered field value.
type Entry struct {
	Key       string    `json:"-"`
	Label     string    `json:"label"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NormalizeKey lowercases s and keeps only ASCII letters, digits and CJK
// unified ideographs.
func NormalizeKey(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || (r >= 0x4e00 && r <= 0x9fff) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Index answers lookups against a memory snapshot.
type Index struct {
	exact map[string]Entry
	long  []Entry
}

// BuildIndex indexes entries by normalized key. Entries with a blank value
// are ignored; when two raw keys normalize alike the newer entry wins.
func BuildIndex(entries map[string]Entry) *Index {
	ix := &Index{exact: make(map[string]Entry, len(entries))}
	for rawKey, e := range entries {
		key := NormalizeKey(rawKey)
		if key == "" || strings.TrimSpace(e.Value) == "" {
			continue
		}
		e.Key = key
		if e.Label == "" {
			e.Label = rawKey
		}
		if prev, ok := ix.exact[key]; ok && prev.UpdatedAt.After(e.UpdatedAt) {
			continue
		}
		ix.exact[key] = e
	}

	for key, e := range ix.exact {
		if utf8.RuneCountInString(key) > minFuzzyKeyLen {
			ix.long = append(ix.long, e)
		}
	}
	sort.Slice(ix.long, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(ix.long[i].Key), utf8.RuneCountInString(ix.long[j].Key)
		if li != lj {
			return li > lj
		}
		return ix.long[i].Key < ix.long[j].Key
	})
	return ix
}

// Lookup finds the entry for a field label, name or placeholder: an exact
// normalized match first, then the longest stored key that contains or is
// contained in the query.
func (ix *Index) Lookup(query string) (Entry, bool) {
	if ix == nil {
		return Entry{}, false
	}
	key := NormalizeKey(query)
	if key == "" {
		return Entry{}, false
	}
	if e, ok := ix.exact[key]; ok {
		return e, true
	}
	if utf8.RuneCountInString(key) <= minFuzzyKeyLen {
		return Entry{}, false
	}
	for _, e := range ix.long {
		if strings.Contains(key, e.Key) || strings.Contains(e.Key, key) {
			return e, true
		}
	}
	return Entry{}, false
}

// Len is the number of indexed entries.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.exact)
}
