package branding

import "testing"

func TestDefaults(t *testing.T) {
	if got := CLIName(); got != "mirrorkit" {
		t.Errorf("CLIName() = %q", got)
	}
	if got := EnvVar("catalog"); got != "MIRRORKIT_CATALOG" {
		t.Errorf("EnvVar(catalog) = %q", got)
	}
	if got := UserAgent("1.0.0"); got != DisplayName()+"/1.0.0" {
		t.Errorf("UserAgent = %q", got)
	}
}
