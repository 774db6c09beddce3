//go:build integration

package integration_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/mirrorkit/mirrorkit/internal/catalog"
	"github.com/mirrorkit/mirrorkit/internal/envstore"
	"github.com/mirrorkit/mirrorkit/internal/gitcfg"
	"github.com/mirrorkit/mirrorkit/internal/locations"
	"github.com/mirrorkit/mirrorkit/internal/mirror"
	"github.com/mirrorkit/mirrorkit/internal/pipcfg"
)

// testEnv is a sandboxed home with git pointed at throwaway config files.
type testEnv struct {
	HomeDir      string
	GitGlobal    string // GIT_CONFIG_GLOBAL
	GitSystem    string // GIT_CONFIG_SYSTEM
	Process      *envstore.Memory
	User         *envstore.File
	Pip          pipcfg.Paths
	Git          *gitcfg.ExecRunner
	Catalog      *catalog.Catalog
	Layouts      map[mirror.Target]locations.Layout
	RewriteFrom  []string
	MachineStore *envstore.Memory
}

// setupTestEnv requires a git binary and isolates every location under
// t.TempDir.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	home := t.TempDir()
	env := &testEnv{
		HomeDir:      home,
		GitGlobal:    filepath.Join(home, ".gitconfig"),
		GitSystem:    filepath.Join(home, "etc", "gitconfig"),
		Process:      envstore.NewMemory(nil),
		MachineStore: envstore.NewMemory(nil),
		Catalog:      catalog.Default(),
		RewriteFrom:  []string{"https://github.com"},
		Pip: pipcfg.Paths{
			Newer:  filepath.Join(home, ".config", "pip", "pip.conf"),
			Legacy: []string{filepath.Join(home, ".pip", "pip.conf"), filepath.Join(home, "pip.ini")},
			System: filepath.Join(home, "etc", "pip.conf"),
		},
	}

	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("GIT_CONFIG_GLOBAL", env.GitGlobal)
	t.Setenv("GIT_CONFIG_SYSTEM", env.GitSystem)

	fs := afero.NewOsFs()
	env.User = envstore.NewFile(fs, filepath.Join(home, ".mirrorkit", envstore.FileName))
	env.Git = &gitcfg.ExecRunner{Binary: "git"}
	env.Layouts = locations.Build(locations.Env{
		Process:      env.Process,
		User:         env.User,
		Machine:      env.MachineStore,
		Fs:           fs,
		Git:          gitcfg.New(env.Git),
		RewriteFrom:  env.RewriteFrom,
		Pip:          env.Pip,
		GitXDGConfig: filepath.Join(home, ".config", "git", "config"),
	})
	return env
}

// gitConfig runs git config against the sandbox and returns trimmed stdout.
func gitConfig(t *testing.T, args ...string) string {
	t.Helper()
	out, err := exec.Command("git", append([]string{"config"}, args...)...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return ""
		}
		t.Fatalf("git config %v: %v", args, err)
	}
	return strings.TrimSpace(string(out))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("file should not exist: %s", path)
	}
}

func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q:\n%s", path, substr, data)
	}
}
