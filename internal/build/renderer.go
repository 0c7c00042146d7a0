package build

import (
	"context"

	"waymark/internal/experiences"
	"waymark/internal/ledger"
	"waymark/internal/pages"
)

// Renderer turns evaluated content into published output. The runner calls
// it only for units that actually need a rebuild.
type Renderer interface {
	RenderExperience(ctx context.Context, exp *experiences.Experience, verdict ledger.Verdict) error
	RenderPage(ctx context.Context, page *pages.Page, verdict ledger.PageVerdict) error
}

// NopRenderer satisfies Renderer without producing output. Useful for dry
// runs and for exercising change detection on its own.
type NopRenderer struct{}

func (NopRenderer) RenderExperience(context.Context, *experiences.Experience, ledger.Verdict) error {
	return nil
}

func (NopRenderer) RenderPage(context.Context, *pages.Page, ledger.PageVerdict) error {
	return nil
}
