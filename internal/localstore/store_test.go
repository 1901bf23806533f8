package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/makeeyaf/xcodesync/internal/config"
	"github.com/makeeyaf/xcodesync/internal/model"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	base := t.TempDir()
	cfg := &config.Config{BaseDir: base}

	for _, cat := range cfg.Categories() {
		if err := os.MkdirAll(cat.Dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", cat.Dir, err)
		}
	}

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return New(cfg.Categories(), log), base
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestListAll(t *testing.T) {
	s, base := testStore(t)

	writeFile(t, filepath.Join(base, "FontAndColorThemes", "Dusk.xccolortheme"), "theme")
	writeFile(t, filepath.Join(base, "KeyBindings", "Vim.idekeybindings"), "bindings")
	writeFile(t, filepath.Join(base, "IDETemplateMacros.plist"), "macros")

	records := s.ListAll()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	byName := make(map[string]model.FileRecord)
	for _, r := range records {
		byName[r.Name] = r
	}
	if byName["Dusk.xccolortheme"].Content != "theme" {
		t.Errorf("unexpected theme content %q", byName["Dusk.xccolortheme"].Content)
	}
	if byName["Vim.idekeybindings"].Content != "bindings" {
		t.Errorf("unexpected bindings content %q", byName["Vim.idekeybindings"].Content)
	}
	if byName["IDETemplateMacros.plist"].Content != "macros" {
		t.Errorf("unexpected macros content %q", byName["IDETemplateMacros.plist"].Content)
	}
	for _, r := range records {
		if r.ModifiedAt.IsZero() {
			t.Errorf("record %s has zero modification time", r.Name)
		}
	}
}

func TestListAll_ExcludesForeignFiles(t *testing.T) {
	s, base := testStore(t)

	writeFile(t, filepath.Join(base, "FontAndColorThemes", "notes.txt"), "not a theme")
	writeFile(t, filepath.Join(base, "other.plist"), "not the macros file")
	writeFile(t, filepath.Join(base, "FontAndColorThemes", "Dusk.xccolortheme"), "theme")

	records := s.ListAll()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Name != "Dusk.xccolortheme" {
		t.Errorf("expected Dusk.xccolortheme, got %s", records[0].Name)
	}
}

func TestWriteAll(t *testing.T) {
	s, base := testStore(t)

	s.WriteAll([]model.FileRecord{
		{Name: "Dusk.xccolortheme", Content: "theme"},
		{Name: "Vim.idekeybindings", Content: "bindings"},
		{Name: "IDETemplateMacros.plist", Content: "macros"},
		{Name: "notes.txt", Content: "skipped silently"},
	})

	checks := map[string]string{
		filepath.Join(base, "FontAndColorThemes", "Dusk.xccolortheme"): "theme",
		filepath.Join(base, "KeyBindings", "Vim.idekeybindings"):       "bindings",
		filepath.Join(base, "IDETemplateMacros.plist"):                 "macros",
	}
	for path, want := range checks {
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}

	if _, err := os.Stat(filepath.Join(base, "notes.txt")); !os.IsNotExist(err) {
		t.Error("uncategorized file must not be written")
	}
}

func TestWriteAll_Overwrites(t *testing.T) {
	s, base := testStore(t)
	path := filepath.Join(base, "FontAndColorThemes", "Dusk.xccolortheme")
	writeFile(t, path, "old")

	s.WriteAll([]model.FileRecord{{Name: "Dusk.xccolortheme", Content: "new"}})

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("content = %q, want %q", got, "new")
	}
}

func TestClearAll(t *testing.T) {
	s, base := testStore(t)

	themePath := filepath.Join(base, "FontAndColorThemes", "Dusk.xccolortheme")
	foreignPath := filepath.Join(base, "FontAndColorThemes", "notes.txt")
	writeFile(t, themePath, "theme")
	writeFile(t, foreignPath, "kept")
	writeFile(t, filepath.Join(base, "IDETemplateMacros.plist"), "macros")

	s.ClearAll()

	if _, err := os.Stat(themePath); !os.IsNotExist(err) {
		t.Error("theme file should be deleted")
	}
	if _, err := os.Stat(filepath.Join(base, "IDETemplateMacros.plist")); !os.IsNotExist(err) {
		t.Error("macros file should be deleted")
	}
	if _, err := os.Stat(foreignPath); err != nil {
		t.Error("uncategorized file must never be a delete target")
	}
}

func TestListAll_MissingDirectory(t *testing.T) {
	base := t.TempDir()
	cfg := &config.Config{BaseDir: filepath.Join(base, "does-not-exist")}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	s := New(cfg.Categories(), log)

	if records := s.ListAll(); len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}
