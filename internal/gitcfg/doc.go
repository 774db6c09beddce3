// Package gitcfg manages Git url.<base>.insteadOf rewrite rules through the
// git command line. Every invocation goes through a Runner so the rules can
// be exercised against gitcfgtest.Fake without a git binary.
package gitcfg
