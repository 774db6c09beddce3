package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/mirrorkit/mirrorkit/internal/catalog"
	"github.com/mirrorkit/mirrorkit/internal/envstore"
	"github.com/mirrorkit/mirrorkit/internal/gitcfg"
	"github.com/mirrorkit/mirrorkit/internal/gitcfg/gitcfgtest"
	"github.com/mirrorkit/mirrorkit/internal/locations"
	"github.com/mirrorkit/mirrorkit/internal/mirror"
	"github.com/mirrorkit/mirrorkit/internal/pipcfg"
)

type fixture struct {
	process *envstore.Memory
	user    *envstore.Memory
	machine *envstore.Memory
	fs      afero.Fs
	git     *gitcfgtest.Fake
	env     locations.Env
}

func newFixture() *fixture {
	f := &fixture{
		process: envstore.NewMemory(nil),
		user:    envstore.NewMemory(nil),
		machine: envstore.NewMemory(nil),
		fs:      afero.NewMemMapFs(),
		git:     gitcfgtest.New(),
	}
	f.env = locations.Env{
		Process:     f.process,
		User:        f.user,
		Machine:     f.machine,
		Fs:          f.fs,
		Git:         gitcfg.New(f.git),
		RewriteFrom: []string{"https://github.com"},
		Pip: pipcfg.Paths{
			Newer:  "/home/u/.config/pip/pip.conf",
			Legacy: []string{"/home/u/.pip/pip.conf"},
			System: "/etc/pip.conf",
		},
	}
	return f
}

func (f *fixture) prober(opts ...Option) *Prober {
	return New(catalog.Default(), locations.Build(f.env), opts...)
}

func TestProbe_Unconfigured(t *testing.T) {
	f := newFixture()
	for _, target := range mirror.AllTargets() {
		state, err := f.prober().Probe(context.Background(), target)
		if err != nil {
			t.Fatal(err)
		}
		if state.Kind != Unconfigured || state.Label() != "unconfigured" {
			t.Errorf("%s: state = %+v", target, state)
		}
	}
}

func TestProbe_Precedence(t *testing.T) {
	f := newFixture()
	f.process.Set(locations.VarPipIndexURL, "https://pypi.tuna.tsinghua.edu.cn/simple")
	f.user.Set(locations.VarPipIndexURL, "https://mirrors.aliyun.com/pypi/simple/")
	_ = afero.WriteFile(f.fs, "/home/u/.pip/pip.conf", []byte("[global]\nindex-url = https://repo.huaweicloud.com/repository/pypi/simple\n"), 0o644)

	state, _ := f.prober().Probe(context.Background(), mirror.Pip)
	if state.Kind != Matched || state.Preset.Name != "清华" {
		t.Fatalf("process variable should win, got %+v", state)
	}
	if state.Source != "process PIP_INDEX_URL" {
		t.Errorf("Source = %q", state.Source)
	}

	f.process.Unset(locations.VarPipIndexURL)
	state, _ = f.prober().Probe(context.Background(), mirror.Pip)
	if state.Preset.Name != "阿里云" {
		t.Errorf("user store should win next, got %+v", state)
	}

	f.user.Unset(locations.VarPipIndexURL)
	state, _ = f.prober().Probe(context.Background(), mirror.Pip)
	if state.Preset.Name != "华为云" || state.Source != "/home/u/.pip/pip.conf" {
		t.Errorf("legacy file should be read last, got %+v", state)
	}
}

func TestProbe_Unrecognized(t *testing.T) {
	f := newFixture()
	f.user.Set(locations.VarHFHubEndpoint, "https://hf.corp.example")

	state, _ := f.prober().Probe(context.Background(), mirror.HuggingFace)
	if state.Kind != Unrecognized {
		t.Fatalf("Kind = %v, want unrecognized", state.Kind)
	}
	if state.Label() != "https://hf.corp.example" {
		t.Errorf("Label = %q", state.Label())
	}
}

func TestProbe_GitRewrite(t *testing.T) {
	f := newFixture()
	f.git.Seed("global", "https://mirrors.cloud.tencent.com/git/", "https://github.com/")

	state, _ := f.prober().Probe(context.Background(), mirror.Git)
	if state.Kind != Matched || state.Preset.Name != "腾讯云" {
		t.Errorf("state = %+v", state)
	}
}

func TestProbe_SkipsFailingSource(t *testing.T) {
	f := newFixture()
	f.process.Fail(locations.VarPipIndexURL, errors.New("boom"))
	f.user.Set(locations.VarPipIndexURL, "https://pypi.tuna.tsinghua.edu.cn/simple/")

	state, _ := f.prober().Probe(context.Background(), mirror.Pip)
	if state.Preset.Name != "清华" {
		t.Errorf("state = %+v", state)
	}
	if len(state.Skipped) != 1 || state.Skipped[0].Source != "process PIP_INDEX_URL" {
		t.Errorf("Skipped = %+v", state.Skipped)
	}
}

func TestProbe_GitFailureIsSkipped(t *testing.T) {
	f := newFixture()
	f.git.Fail(&gitcfg.ExitError{Code: 128})

	state, err := f.prober().Probe(context.Background(), mirror.Git)
	if err != nil {
		t.Fatal(err)
	}
	if state.Kind != Unconfigured || len(state.Skipped) != 1 {
		t.Errorf("state = %+v", state)
	}
}

type slowSource struct{ delay time.Duration }

func (s slowSource) Name() string  { return "slow" }
func (s slowSource) Scope() string { return "test" }
func (s slowSource) Read(ctx context.Context) (string, bool, error) {
	select {
	case <-time.After(s.delay):
		return "https://late.example", true, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

type staticSource struct{ url string }

func (s staticSource) Name() string  { return "static" }
func (s staticSource) Scope() string { return "test" }
func (s staticSource) Read(context.Context) (string, bool, error) {
	return s.url, s.url != "", nil
}

func TestProbe_Timeout(t *testing.T) {
	layouts := map[mirror.Target]locations.Layout{
		mirror.Pip: {
			Target:  mirror.Pip,
			Sources: []locations.Source{slowSource{delay: time.Second}, staticSource{url: "https://pypi.tuna.tsinghua.edu.cn/simple"}},
		},
	}
	p := New(catalog.Default(), layouts, WithTimeout(20*time.Millisecond))

	start := time.Now()
	state, _ := p.Probe(context.Background(), mirror.Pip)
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("probe took %v, timeout not applied", elapsed)
	}
	if len(state.Skipped) != 1 || !errors.Is(state.Skipped[0].Err, mirror.ErrProbeTimeout) {
		t.Fatalf("Skipped = %+v, want one ErrProbeTimeout", state.Skipped)
	}
	if state.Preset.Name != "清华" {
		t.Errorf("next source should be used, got %+v", state)
	}
}

func TestWithTimeout_Clamp(t *testing.T) {
	p := New(catalog.Default(), nil, WithTimeout(time.Minute))
	if p.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", p.timeout, DefaultTimeout)
	}
}

func TestProbe_UnknownTarget(t *testing.T) {
	_, err := newFixture().prober().Probe(context.Background(), mirror.Target("npm"))
	if !errors.Is(err, mirror.ErrUnknownTarget) {
		t.Errorf("err = %v, want ErrUnknownTarget", err)
	}
}

func TestProbeAll(t *testing.T) {
	f := newFixture()
	f.process.Set(locations.VarHFEndpoint, "https://hf-mirror.com/")

	states := f.prober().ProbeAll(context.Background())
	if len(states) != 3 {
		t.Fatalf("states = %v", states)
	}
	if states[mirror.HuggingFace].Preset.Name != "镜像1" {
		t.Errorf("hf = %+v", states[mirror.HuggingFace])
	}
	if states[mirror.Git].Kind != Unconfigured {
		t.Errorf("git = %+v", states[mirror.Git])
	}
}

func TestTraceAndSystem(t *testing.T) {
	f := newFixture()
	f.user.Set(locations.VarPipIndexURL, "https://mirrors.aliyun.com/pypi/simple/")
	f.machine.Set(locations.VarPipIndexURL, "https://pypi.corp.example/simple")

	readings, err := f.prober().Trace(context.Background(), mirror.Pip)
	if err != nil {
		t.Fatal(err)
	}
	// process, user, two files, then machine variable and system file.
	if len(readings) != 6 {
		t.Fatalf("readings = %d, want 6", len(readings))
	}
	if !readings[1].Set || readings[1].System {
		t.Errorf("user reading = %+v", readings[1])
	}
	if !readings[4].System || !readings[4].Set {
		t.Errorf("machine reading = %+v", readings[4])
	}

	hits := f.prober().System(context.Background(), mirror.Pip)
	if len(hits) != 1 || hits[0].URL != "https://pypi.corp.example/simple" {
		t.Errorf("System = %+v", hits)
	}
}
