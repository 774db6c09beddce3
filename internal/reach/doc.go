// Package reach measures whether a mirror answers. A test is one HEAD
// request whose result arrives on a channel, so callers never block on the
// network. At most one test per target runs at a time.
package reach
