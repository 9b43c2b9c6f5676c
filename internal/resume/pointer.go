package resume

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Row is one leaf of a structured résumé.
type Row struct {
	Pointer string `json:"pointer"`
	Label   string `json:"label"`
	Value   any    `json:"value"`
}

var (
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

// Flatten lists the leaves of v as JSON pointer rows. Empty objects and
// arrays become a row with an empty value. Object keys are visited in
// sorted order.
func Flatten(v any) []Row {
	var rows []Row
	flatten(v, "", &rows)
	return rows
}

func flatten(node any, pointer string, rows *[]Row) {
	switch n := node.(type) {
	case map[string]any:
		if len(n) == 0 {
			*rows = append(*rows, leaf(pointer, ""))
			return
		}
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(n[k], pointer+"/"+pointerEscaper.Replace(k), rows)
		}
	case []any:
		if len(n) == 0 {
			*rows = append(*rows, leaf(pointer, ""))
			return
		}
		for i, item := range n {
			flatten(item, pointer+"/"+strconv.Itoa(i), rows)
		}
	default:
		*rows = append(*rows, leaf(pointer, n))
	}
}

func leaf(pointer string, value any) Row {
	if pointer == "" {
		pointer = "/"
	}
	return Row{Pointer: pointer, Label: PointerLabel(pointer), Value: value}
}

// PointerLabel renders a pointer as "a / b / 0".
func PointerLabel(pointer string) string {
	if pointer == "" || pointer == "/" {
		return "(root)"
	}
	parts := strings.Split(pointer, "/")[1:]
	for i, p := range parts {
		parts[i] = pointerUnescaper.Replace(p)
	}
	return strings.Join(parts, " / ")
}

// SetByPointer replaces the value at pointer inside v. Intermediate
// objects and arrays must already exist; the last segment may add a new
// object key.
func SetByPointer(v any, pointer string, value any) error {
	if pointer == "" || pointer == "/" {
		return fmt.Errorf("cannot replace the document root")
	}
	if !strings.HasPrefix(pointer, "/") {
		return fmt.Errorf("invalid pointer %q", pointer)
	}
	segments := strings.Split(pointer, "/")[1:]

	current := v
	for i, raw := range segments {
		key := pointerUnescaper.Replace(raw)
		last := i == len(segments)-1

		switch node := current.(type) {
		case map[string]any:
			if last {
				node[key] = value
				return nil
			}
			next, ok := node[key]
			if !ok {
				return fmt.Errorf("pointer %q: no key %q", pointer, key)
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return fmt.Errorf("pointer %q: bad index %q", pointer, key)
			}
			if last {
				node[idx] = value
				return nil
			}
			current = node[idx]
		default:
			return fmt.Errorf("pointer %q: %q is not a container", pointer, strings.Join(segments[:i], "/"))
		}
	}
	return nil
}
