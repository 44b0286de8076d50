package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RawRow is one ingested record keyed by its source column names.
type RawRow map[string]string

// Lookup returns the first non-empty value among aliases. Every alias is
// first tried with its exact spelling, in order; only then are keys compared
// case-insensitively, in sorted key order.
func (r RawRow) Lookup(aliases ...string) (string, bool) {
	for _, alias := range aliases {
		if v, ok := r[alias]; ok {
			if v = strings.TrimSpace(v); v != "" {
				return v, true
			}
		}
	}
	keys := r.keys()
	for _, alias := range aliases {
		for _, k := range keys {
			if !strings.EqualFold(strings.TrimSpace(k), alias) {
				continue
			}
			if v := strings.TrimSpace(r[k]); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

func (r RawRow) keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether any alias is present with a non-empty value.
func (r RawRow) Has(aliases ...string) bool {
	_, ok := r.Lookup(aliases...)
	return ok
}

// RowSet is an ingested table: the header in source order and the rows.
type RowSet struct {
	Header []string
	Rows   []RawRow
}

// RowFromAny converts a decoded JSON object into a RawRow.
func RowFromAny(m map[string]any) RawRow {
	row := make(RawRow, len(m))
	for k, v := range m {
		row[k] = stringify(v)
	}
	return row
}

// HeaderOf returns the sorted union of keys across rows.
func HeaderOf(rows []RawRow) []string {
	seen := map[string]struct{}{}
	for _, r := range rows {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	header := make([]string, 0, len(seen))
	for k := range seen {
		header = append(header, k)
	}
	sort.Strings(header)
	return header
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
