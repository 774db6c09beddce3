// Package gitcfgtest provides an in-memory git for tests.
package gitcfgtest

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/mirrorkit/mirrorkit/internal/gitcfg"
)

type entry struct {
	key   string
	value string
}

// Fake implements gitcfg.Runner for the `git config` subset gitcfg uses.
// Each scope (--global, --system, --file <path>) is a separate list.
type Fake struct {
	mu     sync.Mutex
	files  map[string][]entry
	calls  [][]string
	failOn map[string]error
	err    error
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{files: make(map[string][]entry), failOn: make(map[string]error)}
}

// Seed adds url.<base>.insteadOf <from> to scope ("global", "system" or a path).
func (f *Fake) Seed(scope, base, from string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[scope] = append(f.files[scope], entry{key: canonical("url." + base + ".insteadOf"), value: from})
}

// Rules returns the rewrite rules stored in scope.
func (f *Fake) Rules(scope string) []gitcfg.Rule {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rules []gitcfg.Rule
	for _, e := range f.files[scope] {
		if strings.HasPrefix(e.key, "url.") && strings.HasSuffix(e.key, ".insteadof") {
			rules = append(rules, gitcfg.Rule{Base: e.key[4 : len(e.key)-len(".insteadof")], From: e.value})
		}
	}
	return rules
}

// Fail makes every invocation return err, as a missing binary would.
func (f *Fake) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// FailOn makes invocations using option (e.g. "--add") return err.
func (f *Fake) FailOn(option string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failOn, option)
		return
	}
	f.failOn[option] = err
}

// Calls returns the argument lists received so far.
func (f *Fake) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.calls...)
}

// Run interprets args like `git config`.
func (f *Fake) Run(ctx context.Context, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string(nil), args...))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	if len(args) < 2 || args[0] != "config" {
		return nil, exit(args, 129, "usage: git config")
	}

	rest := args[1:]
	var scope string
	switch rest[0] {
	case "--global":
		scope, rest = "global", rest[1:]
	case "--system":
		scope, rest = "system", rest[1:]
	case "--file":
		if len(rest) < 2 {
			return nil, exit(args, 129, "option requires a value")
		}
		scope, rest = rest[1], rest[2:]
	default:
		return nil, exit(args, 129, "scope required")
	}

	nameOnly := false
	if len(rest) > 0 && rest[0] == "--name-only" {
		nameOnly, rest = true, rest[1:]
	}
	if len(rest) == 0 {
		return nil, exit(args, 129, "missing action")
	}
	if err := f.failOn[rest[0]]; err != nil {
		return nil, err
	}

	switch rest[0] {
	case "--get-regexp":
		return f.getRegexp(args, scope, rest[1:], nameOnly)
	case "--add":
		if len(rest) != 3 {
			return nil, exit(args, 129, "wrong number of arguments")
		}
		f.files[scope] = append(f.files[scope], entry{key: canonical(rest[1]), value: rest[2]})
		return nil, nil
	case "--unset-all":
		return f.unsetAll(args, scope, rest[1:])
	case "--remove-section":
		return f.removeSection(args, scope, rest[1:])
	default:
		return nil, exit(args, 129, "unsupported action "+rest[0])
	}
}

func (f *Fake) getRegexp(args []string, scope string, rest []string, nameOnly bool) ([]byte, error) {
	if len(rest) != 1 {
		return nil, exit(args, 129, "wrong number of arguments")
	}
	re, err := regexp.Compile("(?i)" + rest[0])
	if err != nil {
		return nil, exit(args, 6, "invalid key pattern")
	}
	var b strings.Builder
	for _, e := range f.files[scope] {
		if !re.MatchString(e.key) {
			continue
		}
		if nameOnly {
			fmt.Fprintln(&b, e.key)
		} else {
			fmt.Fprintf(&b, "%s %s\n", e.key, e.value)
		}
	}
	if b.Len() == 0 {
		return nil, exit(args, 1, "")
	}
	return []byte(b.String()), nil
}

func (f *Fake) unsetAll(args []string, scope string, rest []string) ([]byte, error) {
	if len(rest) < 1 || len(rest) > 2 {
		return nil, exit(args, 129, "wrong number of arguments")
	}
	key := canonical(rest[0])
	var valueRe *regexp.Regexp
	if len(rest) == 2 {
		re, err := regexp.Compile(rest[1])
		if err != nil {
			return nil, exit(args, 6, "invalid pattern")
		}
		valueRe = re
	}

	kept := f.files[scope][:0:0]
	removed := 0
	for _, e := range f.files[scope] {
		if e.key == key && (valueRe == nil || valueRe.MatchString(e.value)) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed == 0 {
		return nil, exit(args, 5, "")
	}
	f.files[scope] = kept
	return nil, nil
}

func (f *Fake) removeSection(args []string, scope string, rest []string) ([]byte, error) {
	if len(rest) != 1 {
		return nil, exit(args, 129, "wrong number of arguments")
	}
	prefix := canonicalSection(rest[0]) + "."
	kept := f.files[scope][:0:0]
	for _, e := range f.files[scope] {
		if !strings.HasPrefix(e.key, prefix) {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(f.files[scope]) {
		return nil, exit(args, 128, "fatal: no such section: "+rest[0])
	}
	f.files[scope] = kept
	return nil, nil
}

// canonical lowercases the section and variable name like git does; the
// subsection keeps its case.
func canonical(key string) string {
	first := strings.Index(key, ".")
	last := strings.LastIndex(key, ".")
	if first < 0 {
		return strings.ToLower(key)
	}
	if first == last {
		return strings.ToLower(key)
	}
	return strings.ToLower(key[:first]) + key[first:last] + strings.ToLower(key[last:])
}

func canonicalSection(name string) string {
	section, sub, ok := strings.Cut(name, ".")
	if !ok {
		return strings.ToLower(name)
	}
	return strings.ToLower(section) + "." + sub
}

func exit(args []string, code int, stderr string) error {
	return &gitcfg.ExitError{Args: args, Code: code, Stderr: stderr}
}
