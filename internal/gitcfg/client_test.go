package gitcfg_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mirrorkit/mirrorkit/internal/gitcfg"
	"github.com/mirrorkit/mirrorkit/internal/gitcfg/gitcfgtest"
	"github.com/mirrorkit/mirrorkit/internal/mirror"
)

var github = []string{"https://github.com"}

func TestRewrites_Empty(t *testing.T) {
	c := gitcfg.New(gitcfgtest.New())
	rules, err := c.Rewrites(context.Background(), gitcfg.Global())
	if err != nil {
		t.Fatalf("Rewrites error: %v", err)
	}
	if len(rules) != 0 {
		t.Errorf("expected no rules, got %v", rules)
	}
}

func TestActive_LastMatchingRuleWins(t *testing.T) {
	fake := gitcfgtest.New()
	fake.Seed("global", "https://old.example/", "https://github.com/")
	fake.Seed("global", "https://other.example/", "https://gitlab.com")
	fake.Seed("global", "https://mirrors.aliyun.com/git/", "https://github.com")
	c := gitcfg.New(fake)

	base, ok, err := c.Active(context.Background(), gitcfg.Global(), github)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || base != "https://mirrors.aliyun.com/git/" {
		t.Errorf("Active = %q, %v", base, ok)
	}
}

func TestActive_OtherScopesIgnored(t *testing.T) {
	fake := gitcfgtest.New()
	fake.Seed("system", "https://corp.example/", "https://github.com")
	c := gitcfg.New(fake)

	if _, ok, _ := c.Active(context.Background(), gitcfg.Global(), github); ok {
		t.Error("system rule leaked into global scope")
	}
	if base, ok, _ := c.Active(context.Background(), gitcfg.System(), github); !ok || base != "https://corp.example/" {
		t.Errorf("system Active = %q, %v", base, ok)
	}
}

func TestAddAndRemoveRewrites(t *testing.T) {
	fake := gitcfgtest.New()
	fake.Seed("global", "https://keep.example/", "https://gitlab.com")
	c := gitcfg.New(fake)
	ctx := context.Background()

	for _, from := range []string{"https://github.com", "https://github.com/"} {
		if err := c.AddRewrite(ctx, gitcfg.Global(), "https://a.example/", from); err != nil {
			t.Fatalf("AddRewrite(%s): %v", from, err)
		}
	}
	if got := len(fake.Rules("global")); got != 3 {
		t.Fatalf("rules after add = %d, want 3", got)
	}

	removed, err := c.RemoveRewrites(ctx, gitcfg.Global(), github)
	if err != nil {
		t.Fatalf("RemoveRewrites: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	rules := fake.Rules("global")
	if len(rules) != 1 || rules[0].Base != "https://keep.example/" {
		t.Errorf("remaining rules = %v, want only the gitlab rule", rules)
	}

	removed, err = c.RemoveRewrites(ctx, gitcfg.Global(), github)
	if err != nil || removed != 0 {
		t.Errorf("second RemoveRewrites = %d, %v; want 0, nil", removed, err)
	}
}

func TestFileScope(t *testing.T) {
	fake := gitcfgtest.New()
	fake.Seed("/home/u/.config/git/config", "https://m.example/", "https://github.com")
	c := gitcfg.New(fake)

	base, ok, err := c.Active(context.Background(), gitcfg.File("/home/u/.config/git/config"), github)
	if err != nil || !ok || base != "https://m.example/" {
		t.Errorf("Active(file) = %q, %v, %v", base, ok, err)
	}
	calls := fake.Calls()
	if len(calls) == 0 || calls[0][1] != "--file" {
		t.Errorf("expected --file invocation, got %v", calls)
	}
}

func TestToolFailure(t *testing.T) {
	fake := gitcfgtest.New()
	fake.Fail(&gitcfg.ExitError{Args: []string{"config"}, Code: 128, Stderr: "fatal: bad config"})
	c := gitcfg.New(fake)

	_, err := c.Rewrites(context.Background(), gitcfg.Global())
	if !errors.Is(err, mirror.ErrToolInvocation) {
		t.Errorf("err = %v, want ErrToolInvocation", err)
	}
	if gitcfg.ExitCode(err) != 128 {
		t.Errorf("ExitCode = %d, want 128", gitcfg.ExitCode(err))
	}
}

func TestExitError(t *testing.T) {
	err := &gitcfg.ExitError{Args: []string{"config", "--global", "--add"}, Code: 3, Stderr: "error: could not lock config file\n"}
	want := "git config --global --add: exit status 3: error: could not lock config file"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if gitcfg.ExitCode(errors.New("other")) != -1 {
		t.Error("ExitCode of non-exit error should be -1")
	}
}
