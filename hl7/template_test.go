package hl7

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultTemplatesParse(t *testing.T) {
	ts, err := NewTemplateSet()
	if err != nil {
		t.Fatalf("default templates failed to parse: %s", err)
	}
	orc, err := ts.Render(ORCTemplate, map[string]string{"message_control_id": "11712345.678"})
	if err != nil {
		t.Fatalf("failed to render ORC: %s", err)
	}
	if !strings.HasPrefix(orc, "ORC|") || !strings.Contains(orc, "11712345.678") {
		t.Errorf("unexpected ORC segment: %q", orc)
	}
}

func TestRenderMissingFieldFails(t *testing.T) {
	ts, err := NewTemplateSet()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ts.Render(PIDTemplate, map[string]string{}); err == nil {
		t.Error("expected error rendering PID with no fields")
	}
}

func TestTemplateDirOverride(t *testing.T) {
	dir := t.TempDir()
	override := "ORC|RE||{{.message_control_id}}|OVERRIDE\n"
	if err := os.WriteFile(filepath.Join(dir, "orc.txt"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}
	ts, err := NewTemplateSetFromDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	orc, err := ts.Render(ORCTemplate, map[string]string{"message_control_id": "11712345.678"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(orc, "OVERRIDE") {
		t.Errorf("expected overridden ORC template, got %q", orc)
	}
	// segments without an override file keep the built-in layout
	if _, err := ts.Render(RXRTemplate, map[string]string{"route": "IM", "administration_site": "LD"}); err != nil {
		t.Errorf("expected built-in RXR template to remain available: %s", err)
	}
}
