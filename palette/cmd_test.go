package palette

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestCLICmd_List(t *testing.T) {
	cmd := &CLICmd{List: true}
	if err := cmd.Validate(nil); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	var out bytes.Buffer
	if err := cmd.Run(&out); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, name := range BuiltinNames() {
		if !strings.Contains(out.String(), name) {
			t.Errorf("output missing %q", name)
		}
	}
}

func TestCLICmd_Export(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "vga.pal")
	cmd := &CLICmd{Source: "vga16", Export: dest}
	if err := cmd.Validate(nil); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	var out bytes.Buffer
	if err := cmd.Run(&out); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "#55ffff") {
		t.Errorf("listing missing #55ffff: %q", out.String())
	}

	pal, err := Load(dest)
	if err != nil {
		t.Fatalf("could not load exported palette: %v", err)
	}
	want, _ := Builtin("vga16")
	if pal.Len() != want.Len() || pal.At(9) != want.At(9) {
		t.Errorf("exported palette differs: %v", pal.Colors())
	}
}

func TestCLICmd_Validate(t *testing.T) {
	if err := (&CLICmd{}).Validate(nil); err == nil {
		t.Error("expected error without palette")
	}
	if err := (&CLICmd{Source: "bw", Export: "bw.txt"}).Validate(nil); err == nil {
		t.Error("expected error for non .pal export")
	}
}
