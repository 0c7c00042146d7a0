package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"waymark/internal/config"
	"waymark/internal/experiences"
	"waymark/internal/history"
	"waymark/internal/ledger"
	"waymark/internal/locations"
	"waymark/internal/logging"
	"waymark/internal/media"
	"waymark/internal/metastore"
	"waymark/internal/pages"
	"waymark/internal/places"
	"waymark/internal/summaries"
)

// ErrBuildInProgress indicates another process holds the build lock.
var ErrBuildInProgress = errors.New("another build is already running")

// Meta identifies one build run.
type Meta struct {
	ID        string
	StartedAt time.Time
}

// NewMeta mints a fresh build identity.
func NewMeta() Meta {
	return Meta{ID: uuid.NewString(), StartedAt: time.Now().UTC()}
}

// UnitReport is the outcome for one experience or page.
type UnitReport struct {
	Name    string
	Kind    string
	Changed bool
	Rebuilt bool
	Detail  string
}

// Report summarizes a completed build run.
type Report struct {
	Build       Meta
	FinishedAt  time.Time
	Experiences int
	Pages       int
	Rebuilt     int
	Forced      bool
	Units       []UnitReport
}

// Runner orchestrates a build: load authored content, associate it with
// experiences, compare fingerprints, and rebuild only what changed.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	renderer Renderer
	history  *history.Store
}

// Option configures a Runner.
type Option func(*Runner)

// WithRenderer replaces the default no-op renderer.
func WithRenderer(r Renderer) Option {
	return func(runner *Runner) { runner.renderer = r }
}

// WithHistory records completed runs in the given store.
func WithHistory(store *history.Store) Option {
	return func(runner *Runner) { runner.history = store }
}

// NewRunner constructs a build runner.
func NewRunner(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	runner := &Runner{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "build"),
		renderer: NopRenderer{},
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Run executes one build. Only one build may run against a data directory at
// a time; concurrent attempts fail fast with ErrBuildInProgress.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	lock := flock.New(filepath.Join(r.cfg.CompiledDir(), ".build.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire build lock: %w", err)
	}
	if !locked {
		return nil, ErrBuildInProgress
	}
	defer func() { _ = lock.Unlock() }()

	meta := NewMeta()
	force := r.cfg.Build.ForceRebuild
	r.logger.Info("build starting",
		logging.String("build_id", meta.ID),
		logging.Bool("force", force))

	content, err := r.loadContent()
	if err != nil {
		return nil, err
	}

	store := metastore.New(r.cfg.CompiledDir(), r.logger)
	led := ledger.New(store, r.logger)
	buildInfo := ledger.BuildInfo{ID: meta.ID, Time: meta.StartedAt}

	report := &Report{Build: meta, Forced: force}

	if err := r.buildExperiences(ctx, content, led, buildInfo, force, report); err != nil {
		return nil, err
	}
	if err := r.buildPages(ctx, led, buildInfo, force, report); err != nil {
		return nil, err
	}

	report.FinishedAt = time.Now().UTC()
	if err := r.recordHistory(ctx, report); err != nil {
		r.logger.Warn("history not recorded", logging.Error(err))
	}

	r.logger.Info("build finished",
		logging.String("build_id", meta.ID),
		logging.Int("experiences", report.Experiences),
		logging.Int("pages", report.Pages),
		logging.Int("rebuilt", report.Rebuilt),
		logging.Duration("elapsed", report.FinishedAt.Sub(meta.StartedAt)))
	return report, nil
}

// content bundles everything loaded from the authored directory for one run.
type content struct {
	top       []*experiences.Experience
	locations *locations.Set
	media     map[string][]media.Asset
	summaries map[string]string
}

func (r *Runner) loadContent() (*content, error) {
	authored := r.cfg.AuthoredDir()

	byName, err := r.loadPlaces(filepath.Join(authored, "places"))
	if err != nil {
		return nil, err
	}

	loaded := &content{
		locations: &locations.Set{ByDay: map[string][]*locations.Location{}},
		media:     map[string][]media.Asset{},
		summaries: map[string]string{},
	}

	if dir := filepath.Join(authored, "locations"); dirExists(dir) {
		if loaded.locations, err = locations.Load(dir, byName); err != nil {
			return nil, err
		}
	}
	if dir := filepath.Join(authored, "summaries"); dirExists(dir) {
		if loaded.summaries, err = summaries.Load(dir); err != nil {
			return nil, err
		}
	}

	var images, clips *media.Collection
	if dir := filepath.Join(authored, "images"); dirExists(dir) {
		if images, err = media.LoadImages(dir, r.cfg.Build.UTCOffset); err != nil {
			return nil, err
		}
	}
	if dir := filepath.Join(authored, "clips"); dirExists(dir) {
		if clips, err = media.LoadClips(dir, r.cfg.Build.UTCOffset); err != nil {
			return nil, err
		}
	}
	loaded.media = media.Intertwine(images, clips)

	if dir := filepath.Join(authored, "experiences"); dirExists(dir) {
		if loaded.top, err = experiences.Load(dir); err != nil {
			return nil, err
		}
	}

	r.logger.Debug("content loaded",
		logging.Int("places", len(byName)),
		logging.Int("locations", loaded.locations.Count()),
		logging.Int("summaries", len(loaded.summaries)),
		logging.Int("experiences", len(loaded.top)))
	return loaded, nil
}

// loadPlaces reads authored places and refreshes their compiled
// representations, which double as the renderer's place data.
func (r *Runner) loadPlaces(dir string) (map[string]*places.Place, error) {
	if !dirExists(dir) {
		return map[string]*places.Place{}, nil
	}
	byName, err := places.Load(dir)
	if err != nil {
		return nil, err
	}

	compiledDir := filepath.Join(r.cfg.CompiledDir(), "places")
	for _, name := range places.Names(byName) {
		place := byName[name]
		wrote, err := place.Compile(compiledDir, r.cfg.Build.ForceRebuild)
		if err != nil {
			return nil, err
		}
		if wrote {
			r.logger.Debug("compiled place", logging.String("place", place.Slug()))
		}
	}
	return byName, nil
}

func (r *Runner) buildExperiences(ctx context.Context, loaded *content, led *ledger.Ledger, buildInfo ledger.BuildInfo, force bool, report *Report) error {
	src := experiences.Sources{
		Locations: loaded.locations,
		Media:     loaded.media,
		Summaries: loaded.summaries,
	}

	for _, exp := range loaded.top {
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Experiences++

		exp.Absorb(src)
		verdict, err := exp.Evaluate(led, buildInfo)
		if err != nil {
			return fmt.Errorf("evaluate experience %s: %w", exp.Slug, err)
		}

		unit := UnitReport{Name: exp.Slug, Kind: history.KindExperience, Changed: verdict.Changed}
		if verdict.Changed || force {
			unit.Rebuilt = true
			unit.Detail = verdict.ChangedCategories()
			report.Rebuilt++

			if err := r.renderer.RenderExperience(ctx, exp, verdict); err != nil {
				return fmt.Errorf("render experience %s: %w", exp.Slug, err)
			}
			if err := led.Commit(exp.Slug, verdict); err != nil {
				return fmt.Errorf("commit experience %s: %w", exp.Slug, err)
			}
			r.logger.Info("experience rebuilt",
				logging.String("slug", exp.Slug),
				logging.String("changed", unit.Detail))
		} else {
			r.logger.Debug("experience unchanged", logging.String("slug", exp.Slug))
		}
		report.Units = append(report.Units, unit)
	}
	return nil
}

func (r *Runner) buildPages(ctx context.Context, led *ledger.Ledger, buildInfo ledger.BuildInfo, force bool, report *Report) error {
	discovered, err := pages.Discover(r.cfg.Paths.DataDir)
	if err != nil {
		return err
	}

	for _, page := range discovered {
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Pages++

		if err := page.BuildContext(r.cfg.Paths.DataDir); err != nil {
			return err
		}
		verdict, err := page.Evaluate(led, buildInfo)
		if err != nil {
			return fmt.Errorf("evaluate page %s: %w", page.Name, err)
		}

		unit := UnitReport{Name: page.MetaName(), Kind: history.KindPage, Changed: verdict.Changed}
		if verdict.Changed || force || page.ForceRebuild {
			unit.Rebuilt = true
			unit.Detail = "context"
			report.Rebuilt++

			if err := r.renderer.RenderPage(ctx, page, verdict); err != nil {
				return fmt.Errorf("render page %s: %w", page.Name, err)
			}
			if err := led.CommitPage(page.MetaName(), verdict); err != nil {
				return fmt.Errorf("commit page %s: %w", page.Name, err)
			}
			r.logger.Info("page rebuilt", logging.String("page", page.MetaName()))
		} else {
			r.logger.Debug("page unchanged", logging.String("page", page.MetaName()))
		}
		report.Units = append(report.Units, unit)
	}
	return nil
}

func (r *Runner) recordHistory(ctx context.Context, report *Report) error {
	if r.history == nil {
		return nil
	}

	run := history.Run{
		BuildID:     report.Build.ID,
		StartedAt:   report.Build.StartedAt,
		FinishedAt:  report.FinishedAt,
		Experiences: report.Experiences,
		Pages:       report.Pages,
		Rebuilt:     report.Rebuilt,
		Forced:      report.Forced,
	}
	var changes []history.UnitChange
	for _, unit := range report.Units {
		if !unit.Rebuilt {
			continue
		}
		changes = append(changes, history.UnitChange{
			Unit:   unit.Name,
			Kind:   unit.Kind,
			Detail: unit.Detail,
		})
	}
	_, err := r.history.RecordRun(ctx, run, changes)
	return err
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
