package feature

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func fakeBranch(name string, err error) BranchReader {
	return BranchReaderFunc(func(string) (string, error) {
		return name, err
	})
}

func TestResolveFromFeatureBranch(t *testing.T) {
	root := t.TempDir()

	ctx, err := Resolve(root, "", fakeBranch("003-add-login", nil))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ctx.ID != "003-add-login" {
		t.Errorf("id = %q", ctx.ID)
	}
	want := filepath.Join(root, "changes", "003-add-login")
	if ctx.Dir != want {
		t.Errorf("dir = %q, want %q", ctx.Dir, want)
	}
	if !filepath.IsAbs(ctx.SpecFile) {
		t.Errorf("spec path should be absolute: %q", ctx.SpecFile)
	}
	if ctx.SpecFile != filepath.Join(want, "spec.md") {
		t.Errorf("spec = %q", ctx.SpecFile)
	}
}

func TestResolveBranchWinsOverOverride(t *testing.T) {
	root := t.TempDir()

	ctx, err := Resolve(root, "007-retry-logic", fakeBranch("003-add-login", nil))
	if err != nil {
		t.Fatal(err)
	}
	if ctx.ID != "003-add-login" {
		t.Errorf("id = %q, branch should be authoritative", ctx.ID)
	}
}

func TestResolveOverrideWhenBranchNotAFeature(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "changes", "007-retry-logic")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	for _, branch := range []BranchReader{
		fakeBranch("main", nil),
		fakeBranch("", nil), // detached
		fakeBranch("", errors.New("not a repository")),
		nil, // no VCS at all
	} {
		ctx, err := Resolve(root, "007-retry-logic", branch)
		if err != nil {
			t.Fatal(err)
		}
		if ctx.ID != "007-retry-logic" {
			t.Errorf("id = %q", ctx.ID)
		}
	}
}

func TestResolveOverrideRequiresDirectory(t *testing.T) {
	_, err := Resolve(t.TempDir(), "007-retry-logic", fakeBranch("main", nil))
	if !errors.Is(err, ErrNoActiveFeature) {
		t.Fatalf("expected ErrNoActiveFeature, got %v", err)
	}
}

func TestResolveUnresolved(t *testing.T) {
	_, err := Resolve(t.TempDir(), "", fakeBranch("main", nil))
	if !errors.Is(err, ErrNoActiveFeature) {
		t.Fatalf("expected ErrNoActiveFeature, got %v", err)
	}
}

func TestRequireArtifacts(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "changes", "001-demo")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "spec.md"), []byte("# Spec\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, err := Resolve(root, "", fakeBranch("001-demo", nil))
	if err != nil {
		t.Fatal(err)
	}

	if err := ctx.RequireArtifacts("spec"); err != nil {
		t.Errorf("spec exists, got %v", err)
	}

	err = ctx.RequireArtifacts("spec", "plan", "tasks")
	var missing *MissingArtifactError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *MissingArtifactError, got %v", err)
	}
	if len(missing.Missing) != 2 {
		t.Fatalf("missing = %v, want plan and tasks", missing.Missing)
	}
	for _, p := range missing.Missing {
		if p == ctx.SpecFile {
			t.Error("existing spec reported as missing")
		}
	}

	if err := ctx.RequireArtifacts("bogus"); err == nil {
		t.Error("unknown artifact name should fail")
	}
}

func TestNextID(t *testing.T) {
	root := t.TempDir()

	n, err := NextID(root)
	if err != nil || n != 1 {
		t.Fatalf("empty project NextID = %d, %v", n, err)
	}

	for _, dir := range []string{"001-first", "007-retry-logic", "notes", "03-short"} {
		if err := os.MkdirAll(filepath.Join(root, "changes", dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	n, err = NextID(root)
	if err != nil {
		t.Fatal(err)
	}
	if n != 8 {
		t.Errorf("NextID = %d, want 8", n)
	}
}

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Add Login", "add-login"},
		{"retry_logic!", "retry-logic"},
		{"--already--slugged--", "already-slugged"},
		{"???", ""},
	}
	for _, tt := range tests {
		if got := NormalizeSlug(tt.in); got != tt.want {
			t.Errorf("NormalizeSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCreate(t *testing.T) {
	root := t.TempDir()

	first, err := Create(root, "Add Login")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != "001-add-login" {
		t.Errorf("id = %q", first.ID)
	}
	if info, err := os.Stat(first.Dir); err != nil || !info.IsDir() {
		t.Errorf("feature directory not created: %v", err)
	}

	second, err := Create(root, "retry logic")
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != "002-retry-logic" {
		t.Errorf("id = %q, IDs should be strictly increasing", second.ID)
	}

	if _, err := Create(root, "???"); err == nil {
		t.Error("empty slug should fail")
	}
}

func TestList(t *testing.T) {
	root := t.TempDir()

	ids, err := List(root)
	if err != nil || ids != nil {
		t.Fatalf("empty project List = %v, %v", ids, err)
	}

	for _, dir := range []string{"002-second", "001-first", "junk"} {
		if err := os.MkdirAll(filepath.Join(root, "changes", dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	ids, err = List(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "001-first" || ids[1] != "002-second" {
		t.Errorf("List = %v", ids)
	}
}
