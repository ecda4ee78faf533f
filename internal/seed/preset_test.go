package seed

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPreset_BuiltIn(t *testing.T) {
	p, err := LoadPreset("minimal")
	if err != nil {
		t.Fatalf("load builtin: %v", err)
	}
	if p.Users != 5 || p.Posts != 10 {
		t.Fatalf("unexpected minimal preset: %+v", p)
	}
	if p.MaxDays != 90 {
		t.Fatalf("expected normalized MaxDays 90, got %d", p.MaxDays)
	}
}

func TestLoadPreset_File(t *testing.T) {
	content := `
users: 12
moderators: 2
posts: 30
comments_per_post: 3
private_ratio: 0.5
schools:
  - name: Jefferson High
    slug: jefferson-high
    description: A preset campus.
    children:
      - name: Chess Club
        slug: jefferson-chess
`
	path := filepath.Join(t.TempDir(), "preset.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write preset: %v", err)
	}

	p, err := LoadPreset(path)
	if err != nil {
		t.Fatalf("load file preset: %v", err)
	}
	if p.Users != 12 || p.Moderators != 2 || p.Posts != 30 {
		t.Fatalf("unexpected counts: %+v", p)
	}
	if p.PrivateRatio != 0.5 {
		t.Fatalf("unexpected private ratio: %v", p.PrivateRatio)
	}
	if len(p.Schools) != 1 || len(p.Schools[0].Children) != 1 {
		t.Fatalf("unexpected school forest: %+v", p.Schools)
	}
	if p.Schools[0].Children[0].Slug != "jefferson-chess" {
		t.Fatalf("unexpected child slug: %q", p.Schools[0].Children[0].Slug)
	}
}

func TestLoadPreset_Missing(t *testing.T) {
	if _, err := LoadPreset("no-such-preset"); err == nil {
		t.Fatal("expected error for unknown preset")
	}
}

func TestPreset_Normalize(t *testing.T) {
	p := Preset{Users: 4, Moderators: 9}
	p.normalize()
	if p.Moderators != 2 {
		t.Fatalf("expected moderators clamped to half of users, got %d", p.Moderators)
	}
	if p.Posts != 100 || p.PrivateRatio != 0.2 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}
