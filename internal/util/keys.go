package util

import (
	"sort"
	"strconv"
	"strings"
)

// NormalizeKeys returns a sorted copy of keys with blanks and duplicates removed.
func NormalizeKeys(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	s := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			s = append(s, k)
		}
	}
	sort.Strings(s)
	out := s[:0]
	for i, k := range s {
		if i > 0 && k == s[i-1] {
			continue
		}
		out = append(out, k)
	}
	return out
}

// Signature renders sortedKeys with their epochs as "k1=e1;k2=e2".
// Missing epochs render as 0. No keys => "".
func Signature(sortedKeys []string, epochs map[string]uint64) string {
	if len(sortedKeys) == 0 {
		return ""
	}
	var b strings.Builder
	for i, k := range sortedKeys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.FormatUint(epochs[k], 10))
	}
	return b.String()
}

// MirrorKey is the provider key for a mirrored snapshot.
func MirrorKey(ns, key string) string {
	return "snap:" + ns + ":" + key
}
