package pages

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"waymark/internal/fingerprint"
	"waymark/internal/ledger"
)

// Page is a standalone content unit rendered from a template and a
// key-value context rather than a time range.
type Page struct {
	Name         string
	Root         bool
	TemplateName string
	Compact      bool
	ForceRebuild bool

	// Active feeds the fingerprint; Passive is merge-at-render-only data
	// (navigation, shared chrome) that must not trigger rebuilds.
	Active  map[string]any
	Passive map[string]any

	contextBuilt bool
}

// Options carries the optional knobs for constructing a page.
type Options struct {
	Root         bool
	TemplateName string
	Compact      bool
	ForceRebuild bool
	Active       map[string]any
	Passive      map[string]any
}

// New constructs a page with its own copy of the provided contexts.
func New(name string, opts Options) *Page {
	page := &Page{
		Name:         name,
		Root:         opts.Root,
		TemplateName: opts.TemplateName,
		Compact:      opts.Compact,
		ForceRebuild: opts.ForceRebuild,
		Active:       make(map[string]any),
		Passive:      make(map[string]any),
	}
	for key, value := range opts.Active {
		page.Active[key] = value
	}
	for key, value := range opts.Passive {
		page.Passive[key] = value
	}
	return page
}

func (p *Page) String() string { return p.Name }

// FullName distinguishes root pages from regular ones in authored content
// and persisted metadata.
func (p *Page) FullName() string {
	if p.Root {
		return "root!" + p.Name + ".html"
	}
	return p.Name + ".html"
}

// MetaName keys the persisted page record.
func (p *Page) MetaName() string {
	return strings.TrimSuffix(p.FullName(), ".html")
}

// OutputPath is where the rendered page lands relative to the frontend
// directory.
func (p *Page) OutputPath() string {
	if p.Root {
		return p.Name + ".html"
	}
	return filepath.Join("pages", p.Name+".html")
}

// BuildContext assembles the active rendering context from the authored
// YAML front matter and optional body file. A missing YAML file is fine;
// malformed YAML is not.
func (p *Page) BuildContext(dataDir string) error {
	p.Active["compact"] = p.Compact
	p.Active["page_name"] = p.Name

	yamlPath := filepath.Join(dataDir, "authored", "pages",
		strings.Replace(p.FullName(), ".html", ".yaml", 1))

	raw, err := os.ReadFile(yamlPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// No front matter for this page. That's OK.
	case err != nil:
		return fmt.Errorf("pages: read %s: %w", yamlPath, err)
	default:
		var front map[string]any
		if err := yaml.Unmarshal(raw, &front); err != nil {
			return fmt.Errorf("pages: parse %s: %w", yamlPath, err)
		}
		if title, ok := front["title"]; ok {
			delete(front, "title")
			p.Active["title"] = title
			p.Active["page_title"] = title
		}
		if body, ok := front["body_content"]; ok {
			delete(front, "body_content")
			p.Active["body_content"] = body
		}
		for key, value := range front {
			p.Active[key] = value
		}
	}

	if _, ok := p.Active["title"]; !ok {
		p.Active["title"] = p.Name
		p.Active["page_title"] = p.Name
	}

	if _, ok := p.Active["body_content"]; !ok {
		bodyPath := filepath.Join(dataDir, "authored", "pages",
			strings.Replace(p.FullName(), ".html", "-body.md", 1))
		body, err := os.ReadFile(bodyPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// No body file either; the template decides what to show.
		case err != nil:
			return fmt.Errorf("pages: read %s: %w", bodyPath, err)
		default:
			p.Active["body_content"] = string(body)
		}
	}

	p.contextBuilt = true
	return nil
}

// Checksum digests the active context. The context must be built first so a
// half-assembled context can never masquerade as the real one.
func (p *Page) Checksum() (fingerprint.Digest, error) {
	if !p.contextBuilt {
		return "", fmt.Errorf("pages: %s: context has not been built", p.Name)
	}
	return fingerprint.Context(p.Active), nil
}

// Evaluate compares the page's context checksum against its persisted
// record.
func (p *Page) Evaluate(led *ledger.Ledger, build ledger.BuildInfo) (ledger.PageVerdict, error) {
	checksum, err := p.Checksum()
	if err != nil {
		return ledger.PageVerdict{}, err
	}
	return led.EvaluatePage(p.MetaName(), checksum, build)
}

// RenderContext merges the passive context over the active one for the
// renderer. Passive keys never reach the fingerprint.
func (p *Page) RenderContext() map[string]any {
	merged := make(map[string]any, len(p.Active)+len(p.Passive))
	for key, value := range p.Active {
		merged[key] = value
	}
	for key, value := range p.Passive {
		merged[key] = value
	}
	return merged
}

// Discover lists the authored page names under dataDir, root pages first,
// each group sorted by name.
func Discover(dataDir string) ([]*Page, error) {
	dir := filepath.Join(dataDir, "authored", "pages")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("pages: read dir %s: %w", dir, err)
	}

	var pages []*Page
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		base := strings.TrimSuffix(name, ".yaml")
		root := strings.HasPrefix(base, "root!")
		pages = append(pages, New(strings.TrimPrefix(base, "root!"), Options{Root: root}))
	}
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Root != pages[j].Root {
			return pages[i].Root
		}
		return pages[i].Name < pages[j].Name
	})
	return pages, nil
}
