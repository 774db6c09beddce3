package pipcfg

import (
	"path/filepath"
)

// Paths lists the pip configuration files one platform knows about.
type Paths struct {
	// Newer is the per-user file current pip versions read first.
	Newer string
	// Legacy are older per-user locations, in probe order.
	Legacy []string
	// System is the machine-wide file. It is only read.
	System string
	// Venv is the active virtualenv's file, empty outside a virtualenv.
	Venv string
}

// ForPlatform returns the paths for goos. getenv is os.Getenv in
// production; home is the user's home directory.
func ForPlatform(goos string, getenv func(string) string, home string) Paths {
	join := filepath.Join
	var p Paths
	if goos == "windows" {
		p.Newer = joinIf(getenv("APPDATA"), "pip", "pip.ini")
		p.Legacy = nonEmpty(
			joinIf(getenv("USERPROFILE"), "pip", "pip.ini"),
			joinIf(home, ".pip", "pip.conf"),
			joinIf(getenv("LOCALAPPDATA"), "pip", "pip.ini"),
			joinIf(home, "pip.ini"),
		)
		p.System = joinIf(getenv("PROGRAMDATA"), "pip", "pip.ini")
		p.Venv = joinIf(getenv("VIRTUAL_ENV"), "pip.ini")
		return p
	}

	xdg := getenv("XDG_CONFIG_HOME")
	if xdg == "" && home != "" {
		xdg = join(home, ".config")
	}
	p.Newer = joinIf(xdg, "pip", "pip.conf")
	p.Legacy = nonEmpty(
		joinIf(home, ".pip", "pip.conf"),
		joinIf(home, "pip.ini"),
	)
	p.System = "/etc/pip.conf"
	p.Venv = joinIf(getenv("VIRTUAL_ENV"), "pip.conf")
	return p
}

// User returns the per-user files in probe order.
func (p Paths) User() []string {
	return nonEmpty(append([]string{p.Newer}, p.Legacy...)...)
}

// joinIf joins elem under dir, or returns "" when dir is unknown.
func joinIf(dir string, elem ...string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(append([]string{dir}, elem...)...)
}

func nonEmpty(paths ...string) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
