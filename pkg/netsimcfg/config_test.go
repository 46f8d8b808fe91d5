package netsimcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iti/netsim/internal/topology"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected Default() for missing file, got %+v", cfg)
	}
}

func TestLoadOverlaysYAMLFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netsim.yaml")
	contents := "topologyFile: custom.csv\ntableKind: tree\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TopologyFile != "custom.csv" || cfg.TableKind != "tree" {
		t.Fatalf("unexpected config after load: %+v", cfg)
	}
	if cfg.PathLogFile != Default().PathLogFile {
		t.Fatalf("expected unset fields to keep default, got %+v", cfg)
	}
}

func TestResolveTableKind(t *testing.T) {
	cases := []struct {
		choice string
		want   topology.TableKind
	}{
		{"1", topology.ListTableKind},
		{"", topology.ListTableKind},
		{"2", topology.TreeTableKind},
		{"tree", topology.TreeTableKind},
	}
	for _, c := range cases {
		got, err := ResolveTableKind(c.choice)
		if err != nil {
			t.Fatalf("ResolveTableKind(%q): %v", c.choice, err)
		}
		if got != c.want {
			t.Fatalf("ResolveTableKind(%q) = %v, want %v", c.choice, got, c.want)
		}
	}
	if _, err := ResolveTableKind("bogus"); err == nil {
		t.Fatal("expected error for unrecognized choice")
	}
}
