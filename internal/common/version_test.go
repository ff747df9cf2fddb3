package common

import "testing"

func TestApplyVersionValue_FileOnlyFillsDefaults(t *testing.T) {
	origVersion, origBuild, origCommit := Version, Build, GitCommit
	defer func() { Version, Build, GitCommit = origVersion, origBuild, origCommit }()

	Version, Build, GitCommit = "dev", "unknown", "unknown"
	applyVersionValue("version", "1.4.0")
	applyVersionValue("build", "2026-03-02T08:00:00Z")
	applyVersionValue("commit", "abc1234")
	if Version != "1.4.0" || Build != "2026-03-02T08:00:00Z" || GitCommit != "abc1234" {
		t.Errorf("defaults should be replaced, got %s/%s/%s", Version, Build, GitCommit)
	}

	applyVersionValue("version", "9.9.9")
	if Version != "1.4.0" {
		t.Errorf("stamped version should win over the file, got %s", Version)
	}
	applyVersionValue("version", "")
	if Version != "1.4.0" {
		t.Errorf("empty value should be ignored, got %s", Version)
	}
}

func TestGetFullVersion(t *testing.T) {
	origVersion, origBuild, origCommit := Version, Build, GitCommit
	defer func() { Version, Build, GitCommit = origVersion, origBuild, origCommit }()

	Version, Build, GitCommit = "1.4.0", "20260302", "abc1234"
	if got := GetFullVersion(); got != "1.4.0 (build: 20260302, commit: abc1234)" {
		t.Errorf("GetFullVersion = %q", got)
	}
}
