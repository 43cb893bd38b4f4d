package config

import "testing"

func TestGetVersion(t *testing.T) {
	if v := GetVersion(); v != "dev" {
		t.Errorf("expected default version dev, got %s", v)
	}
}

func TestGetFullVersion(t *testing.T) {
	expected := "dev (build: unknown, commit: unknown)"
	if fv := GetFullVersion(); fv != expected {
		t.Errorf("expected full version %q, got %q", expected, fv)
	}
}

func TestVersionInfo_Fields(t *testing.T) {
	info := VersionInfo()
	for _, key := range []string{"version", "build", "git_commit"} {
		if _, ok := info[key]; !ok {
			t.Errorf("expected %s in version info", key)
		}
	}
}
