package template

import (
	"fmt"
	"sort"
	"strconv"
)

// Value is a node of the data tree a template renders against.
//
// Lookup returns nil when the child does not exist. Items returns the children
// iterated by {{#each}}; leaves return nil. Text and Truthy may evaluate
// deferred data and therefore can fail.
type Value interface {
	Lookup(name string) Value
	Items() []Item
	Text() (string, error)
	Truthy() (bool, error)
}

// Item is one iteration of {{#each}}.
type Item struct {
	Key   string
	Value Value
}

// String returns a leaf holding s.
func String(s string) Value {
	return scalar{text: s, truthy: s != ""}
}

type scalar struct {
	text   string
	truthy bool
}

func (scalar) Lookup(string) Value { return nil }
func (scalar) Items() []Item { return nil }
func (s scalar) Text() (string, error) { return s.text, nil }
func (s scalar) Truthy() (bool, error) { return s.truthy, nil }

// FromMap adapts plain Go data: maps with string keys, slices, strings,
// booleans, numbers and nil. Map keys iterate in sorted order.
func FromMap(data map[string]any) Value {
	return fromAny(data)
}

func fromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return nil
	case Value:
		return t
	case map[string]any:
		return mapValue(t)
	case []any:
		return listValue(t)
	case []string:
		list := make(listValue, len(t))
		for i, s := range t {
			list[i] = s
		}

		return list
	case string:
		return String(t)
	case bool:
		return scalar{text: strconv.FormatBool(t), truthy: t}
	case int:
		return scalar{text: strconv.Itoa(t), truthy: t != 0}
	case int64:
		return scalar{text: strconv.FormatInt(t, 10), truthy: t != 0}
	case float64:
		return scalar{text: strconv.FormatFloat(t, 'f', -1, 64), truthy: t != 0}
	default:
		s := fmt.Sprint(t)
		return scalar{text: s, truthy: s != ""}
	}
}

type mapValue map[string]any

func (m mapValue) Lookup(name string) Value {
	v, ok := m[name]
	if !ok {
		return nil
	}

	return fromAny(v)
}

func (m mapValue) Items() []Item {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	items := make([]Item, 0, len(keys))

	for _, k := range keys {
		if v := fromAny(m[k]); v != nil {
			items = append(items, Item{Key: k, Value: v})
		}
	}

	return items
}

func (mapValue) Text() (string, error) { return "", nil }
func (mapValue) Truthy() (bool, error) { return true, nil }

type listValue []any

func (l listValue) Lookup(name string) Value {
	i, err := strconv.Atoi(name)
	if err != nil || i < 0 || i >= len(l) {
		return nil
	}

	return fromAny(l[i])
}

func (l listValue) Items() []Item {
	items := make([]Item, 0, len(l))

	for i, v := range l {
		if val := fromAny(v); val != nil {
			items = append(items, Item{Key: strconv.Itoa(i), Value: val})
		}
	}

	return items
}

func (listValue) Text() (string, error) { return "", nil }
func (l listValue) Truthy() (bool, error) { return len(l) > 0, nil }
