package gitcfg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mirrorkit/mirrorkit/internal/mirror"
)

// git config exit statuses that mean "nothing there" rather than failure.
const (
	exitNoMatch   = 1
	exitNoSuchKey = 5
)

const rewriteKeyPattern = `^url\..*\.insteadof$`

// Scope selects the configuration file git reads or writes.
type Scope struct {
	name string
	args []string
}

// Global is the user's ~/.gitconfig (or $GIT_CONFIG_GLOBAL).
func Global() Scope { return Scope{name: "global", args: []string{"--global"}} }

// System is the installation-wide gitconfig.
func System() Scope { return Scope{name: "system", args: []string{"--system"}} }

// File is an explicit config file such as $XDG_CONFIG_HOME/git/config.
func File(path string) Scope { return Scope{name: path, args: []string{"--file", path}} }

func (s Scope) String() string { return s.name }

// Rule is one url.<Base>.insteadOf <From> entry.
type Rule struct {
	Base string
	From string
}

// Client reads and edits rewrite rules.
type Client struct {
	runner Runner
}

// New returns a Client using r.
func New(r Runner) *Client {
	return &Client{runner: r}
}

func (c *Client) config(ctx context.Context, scope Scope, args ...string) ([]byte, error) {
	full := append([]string{"config"}, scope.args...)
	return c.runner.Run(ctx, append(full, args...)...)
}

// Rewrites lists the insteadOf rules of scope in file order.
func (c *Client) Rewrites(ctx context.Context, scope Scope) ([]Rule, error) {
	out, err := c.config(ctx, scope, "--get-regexp", rewriteKeyPattern)
	if ExitCode(err) == exitNoMatch {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s rewrite rules: %w", scope, err)
	}

	var rules []Rule
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), " ")
		if !ok {
			continue
		}
		base, ok := baseFromKey(key)
		if !ok {
			continue
		}
		rules = append(rules, Rule{Base: base, From: strings.TrimSpace(value)})
	}
	return rules, sc.Err()
}

// Active returns the base of the last rule that rewrites one of from.
func (c *Client) Active(ctx context.Context, scope Scope, from []string) (string, bool, error) {
	rules, err := c.Rewrites(ctx, scope)
	if err != nil {
		return "", false, err
	}
	base, ok := "", false
	for _, r := range rules {
		if rewrites(r, from) {
			base, ok = r.Base, true
		}
	}
	return base, ok, nil
}

// AddRewrite registers url.<base>.insteadOf <from>.
func (c *Client) AddRewrite(ctx context.Context, scope Scope, base, from string) error {
	if _, err := c.config(ctx, scope, "--add", rewriteKey(base), from); err != nil {
		return fmt.Errorf("adding %s rewrite %s -> %s: %w", scope, from, base, err)
	}
	return nil
}

// RemoveRewrites deletes every rule of scope whose source is one of from,
// with or without a trailing slash, and drops url sections left empty.
// Rules rewriting other URLs are kept.
func (c *Client) RemoveRewrites(ctx context.Context, scope Scope, from []string) (int, error) {
	rules, err := c.Rewrites(ctx, scope)
	if err != nil {
		return 0, err
	}

	removed := 0
	touched := make(map[string]bool)
	for _, r := range rules {
		if !rewrites(r, from) {
			continue
		}
		_, err := c.config(ctx, scope, "--unset-all", rewriteKey(r.Base), "^"+regexp.QuoteMeta(r.From)+"$")
		if ExitCode(err) == exitNoSuchKey {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("removing %s rewrite for %s: %w", scope, r.Base, err)
		}
		removed++
		touched[r.Base] = true
	}

	for base := range touched {
		c.removeSectionIfEmpty(ctx, scope, base)
	}
	return removed, nil
}

func (c *Client) removeSectionIfEmpty(ctx context.Context, scope Scope, base string) {
	out, err := c.config(ctx, scope, "--name-only", "--get-regexp", `^url\.`)
	if err != nil && ExitCode(err) != exitNoMatch {
		return
	}
	prefix := "url." + base + "."
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if strings.HasPrefix(strings.TrimSpace(sc.Text()), prefix) {
			return
		}
	}
	// Best effort: a leftover empty [url "..."] header is harmless.
	_, _ = c.config(ctx, scope, "--remove-section", "url."+base)
}

func rewriteKey(base string) string {
	return "url." + base + ".insteadOf"
}

func baseFromKey(key string) (string, bool) {
	const suffix = ".insteadof"
	if !strings.HasPrefix(key, "url.") || len(key) <= len("url.")+len(suffix) {
		return "", false
	}
	if !strings.EqualFold(key[len(key)-len(suffix):], suffix) {
		return "", false
	}
	return key[len("url.") : len(key)-len(suffix)], true
}

func rewrites(r Rule, from []string) bool {
	for _, f := range from {
		if mirror.SameURL(r.From, f) {
			return true
		}
	}
	return false
}
