package sheetcache

import (
	"fmt"
	"sort"
	"strings"
)

// FetchError is returned by a Loader when its producer failed and no stale
// value could be served.
type FetchError struct {
	Key string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %q: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// BumpError reports watch keys whose epoch could not be incremented. Keys not
// listed were bumped.
type BumpError struct {
	Errs map[string]error
}

func (e *BumpError) Error() string {
	keys := e.keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %v", k, e.Errs[k])
	}
	return "bump failed: " + strings.Join(parts, "; ")
}

func (e *BumpError) Unwrap() []error {
	keys := e.keys()
	errs := make([]error, len(keys))
	for i, k := range keys {
		errs[i] = e.Errs[k]
	}
	return errs
}

func (e *BumpError) keys() []string {
	keys := make([]string, 0, len(e.Errs))
	for k := range e.Errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
