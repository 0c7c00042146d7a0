package pages

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"waymark/internal/ledger"
	"waymark/internal/logging"
	"waymark/internal/metastore"
)

func writeAuthored(t *testing.T, dataDir, name, body string) {
	t.Helper()
	dir := filepath.Join(dataDir, "authored", "pages")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFullNameAndOutputPath(t *testing.T) {
	regular := New("about", Options{})
	if regular.FullName() != "about.html" {
		t.Errorf("FullName: %q", regular.FullName())
	}
	if regular.OutputPath() != filepath.Join("pages", "about.html") {
		t.Errorf("OutputPath: %q", regular.OutputPath())
	}

	root := New("index", Options{Root: true})
	if root.FullName() != "root!index.html" {
		t.Errorf("root FullName: %q", root.FullName())
	}
	if root.OutputPath() != "index.html" {
		t.Errorf("root OutputPath: %q", root.OutputPath())
	}
	if root.MetaName() != "root!index" {
		t.Errorf("MetaName: %q", root.MetaName())
	}
}

func TestBuildContextMergesFrontMatterAndBody(t *testing.T) {
	dataDir := t.TempDir()
	writeAuthored(t, dataDir, "about.yaml", "title: About Me\nhero: mountains.jpg\n")
	writeAuthored(t, dataDir, "about-body.md", "Hello from the road.\n")

	page := New("about", Options{})
	if err := page.BuildContext(dataDir); err != nil {
		t.Fatalf("BuildContext: %v", err)
	}
	if page.Active["title"] != "About Me" || page.Active["page_title"] != "About Me" {
		t.Errorf("title: %v", page.Active["title"])
	}
	if page.Active["hero"] != "mountains.jpg" {
		t.Errorf("extra front matter keys must pass through: %v", page.Active["hero"])
	}
	if got, _ := page.Active["body_content"].(string); !strings.Contains(got, "Hello from the road") {
		t.Errorf("body_content: %q", got)
	}
}

func TestBuildContextDefaults(t *testing.T) {
	page := New("gallery", Options{Compact: true})
	if err := page.BuildContext(t.TempDir()); err != nil {
		t.Fatalf("BuildContext without authored files: %v", err)
	}
	if page.Active["title"] != "gallery" {
		t.Errorf("title defaults to the page name: %v", page.Active["title"])
	}
	if page.Active["compact"] != true {
		t.Errorf("compact flag must land in the context: %v", page.Active["compact"])
	}
}

func TestChecksumRequiresBuiltContext(t *testing.T) {
	page := New("about", Options{})
	if _, err := page.Checksum(); err == nil {
		t.Fatal("checksum before BuildContext must fail")
	}
	if err := page.BuildContext(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	if _, err := page.Checksum(); err != nil {
		t.Errorf("checksum after BuildContext: %v", err)
	}
}

func TestPassiveContextNeverAffectsChecksum(t *testing.T) {
	dataDir := t.TempDir()

	bare := New("about", Options{})
	if err := bare.BuildContext(dataDir); err != nil {
		t.Fatal(err)
	}
	plain, err := bare.Checksum()
	if err != nil {
		t.Fatal(err)
	}

	decorated := New("about", Options{Passive: map[string]any{"nav": []any{"home", "about"}}})
	if err := decorated.BuildContext(dataDir); err != nil {
		t.Fatal(err)
	}
	withNav, err := decorated.Checksum()
	if err != nil {
		t.Fatal(err)
	}

	if plain != withNav {
		t.Error("passive context must not move the checksum")
	}
	if _, ok := decorated.RenderContext()["nav"]; !ok {
		t.Error("passive context must still reach the renderer")
	}
}

func TestEvaluateRoundTrip(t *testing.T) {
	dataDir := t.TempDir()
	store := metastore.New(filepath.Join(dataDir, "compiled"), logging.NewNop())
	led := ledger.New(store, logging.NewNop())
	build := ledger.BuildInfo{ID: "b1", Time: time.Now()}

	page := New("about", Options{})
	if err := page.BuildContext(dataDir); err != nil {
		t.Fatal(err)
	}

	verdict, err := page.Evaluate(led, build)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !verdict.Changed {
		t.Fatal("first build must read as changed")
	}
	if err := led.CommitPage(page.MetaName(), verdict); err != nil {
		t.Fatal(err)
	}

	again, err := page.Evaluate(led, ledger.BuildInfo{ID: "b2", Time: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if again.Changed {
		t.Error("identical context must not read as changed")
	}
	if again.Previous == nil || again.Previous.Build != "b1" {
		t.Errorf("previous record: %+v", again.Previous)
	}
}

func TestDiscover(t *testing.T) {
	dataDir := t.TempDir()
	writeAuthored(t, dataDir, "root!index.yaml", "title: Home\n")
	writeAuthored(t, dataDir, "about.yaml", "title: About\n")
	writeAuthored(t, dataDir, "about-body.md", "body\n")

	found, err := Discover(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 2 {
		t.Fatalf("discover: %d pages", len(found))
	}
	if !found[0].Root || found[0].Name != "index" {
		t.Errorf("root pages come first: %+v", found[0])
	}
	if found[1].Name != "about" {
		t.Errorf("second page: %+v", found[1])
	}
}
