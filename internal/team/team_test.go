package team

import (
	"testing"
)

func TestInitLoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	if err := Init(home, false); err != nil {
		t.Fatal(err)
	}
	if err := Init(home, false); err == nil {
		t.Error("re-init without force must fail")
	}
	if err := Init(home, true); err != nil {
		t.Errorf("forced re-init: %v", err)
	}

	cfg, err := Load(home)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.StrictDelegates {
		t.Error("default config must use the strict codec for snapshots")
	}

	cfg.Team = "platform"
	cfg.Members = append(cfg.Members, Member{Alias: "alice", DisplayName: "Alice Nguyen", Kind: KindInternal})
	if err := Save(home, *cfg); err != nil {
		t.Fatal(err)
	}

	again, err := Load(home)
	if err != nil {
		t.Fatal(err)
	}
	if again.Team != "platform" || len(again.Members) != 1 {
		t.Errorf("round-trip lost data: %+v", again)
	}
	if again.DisplayName("alice") != "Alice Nguyen" {
		t.Errorf("DisplayName = %q", again.DisplayName("alice"))
	}
	if again.DisplayName("ghost") != "ghost" {
		t.Error("unknown alias must fall back to itself")
	}
}

func TestLoadUninitialized(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("want error for uninitialized home")
	}
}

func TestDoctor(t *testing.T) {
	home := t.TempDir()
	if err := Init(home, false); err != nil {
		t.Fatal(err)
	}
	cfg, _ := Load(home)
	cfg.Members = []Member{
		{Alias: "alice", DisplayName: "Alice"},
		{Alias: "alice", DisplayName: "Other Alice"},
		{Alias: "", DisplayName: "Nameless"},
	}
	cfg.Vaults = []string{"/definitely/not/a/real/vault"}
	if err := Save(home, *cfg); err != nil {
		t.Fatal(err)
	}

	issues := Doctor(home)
	var errors, warnings int
	for _, i := range issues {
		switch i.Severity {
		case "error":
			errors++
		case "warning":
			warnings++
		}
	}
	if errors != 2 {
		t.Errorf("errors = %d (duplicate + empty alias), issues %+v", errors, issues)
	}
	if warnings == 0 {
		t.Errorf("missing vault must warn, issues %+v", issues)
	}
}
