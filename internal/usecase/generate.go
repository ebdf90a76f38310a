package usecase

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"apidoc/internal/domain"
	"apidoc/internal/extractor"
	"apidoc/internal/finalizer"
	"apidoc/internal/normalizer"
	"apidoc/internal/port"
	"apidoc/internal/resolver"
	"apidoc/internal/symbols"
)

// Source is the file access the pipeline needs.
type Source interface {
	port.FileWalker
	port.FileReader
}

// GenerateRequest is everything one run depends on. It is read-only once
// handed to Generate.
type GenerateRequest struct {
	// Roots are walked in order; files keep that order in the output of the
	// extraction stage.
	Roots          []string
	Project        domain.ProjectMetadata
	Generator      domain.Generator
	ExcludePrivate bool
	// Workers bounds the extraction and normalization pools. Zero means
	// GOMAXPROCS.
	Workers int
	// Progress, when set, is called after each file is extracted.
	Progress func(done, total int)
}

// GenerateResult holds the two output texts of a successful run.
type GenerateResult struct {
	Data      string
	Project   string
	Endpoints int
	Files     int
}

// GenerateUseCase runs the documentation pipeline.
type GenerateUseCase struct {
	source    Source
	extractor *extractor.Extractor
	renderer  port.Renderer
	log       port.Logger
}

// NewGenerateUseCase creates the use case. renderer may be nil.
func NewGenerateUseCase(
	source Source,
	extractor *extractor.Extractor,
	renderer port.Renderer,
	log port.Logger,
) *GenerateUseCase {
	return &GenerateUseCase{
		source:    source,
		extractor: extractor,
		renderer:  renderer,
		log:       log,
	}
}

// Generate returns (nil, nil) when there is nothing to document.
func (u *GenerateUseCase) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	files, err := u.collect(req.Roots)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		u.log.Verbose("no matching source files", nil)
		return nil, nil
	}

	results, err := u.extractAll(ctx, files, req)
	if err != nil {
		return nil, err
	}

	var units []*domain.DocUnit
	for _, r := range results {
		units = append(units, r.Units...)
	}

	table, err := symbols.Build(units)
	if err != nil {
		return nil, err
	}
	res := resolver.New(table)
	if err := res.Prepare(); err != nil {
		return nil, err
	}

	norm := normalizer.New(table, normalizer.Options{
		ProjectVersion: req.Project.Version,
		SampleURL:      req.Project.SampleURL,
	}, u.renderer, u.log)
	norm.Diagnose(units)

	endpoints, err := u.normalizeAll(ctx, finalizer.Endpoints(units), res, norm, req.Workers)
	if err != nil {
		return nil, err
	}

	endpoints, err = finalizer.Finalize(endpoints, req.ExcludePrivate)
	if err != nil {
		return nil, err
	}
	if len(endpoints) == 0 {
		u.log.Verbose("no endpoints to document", map[string]any{"files": len(files)})
		return nil, nil
	}

	project := finalizer.Project(req.Project, req.Generator)
	data, proj, err := finalizer.Serialize(endpoints, project)
	if err != nil {
		return nil, err
	}

	return &GenerateResult{
		Data:      data,
		Project:   proj,
		Endpoints: len(endpoints),
		Files:     len(files),
	}, nil
}

// collect walks the roots in order. Within a root, files are in walk order.
// With more than one root, paths are prefixed with their root so that files
// of the same name stay distinguishable.
func (u *GenerateUseCase) collect(roots []string) ([]port.FileInfo, error) {
	var files []port.FileInfo
	for _, root := range roots {
		found, err := u.source.Walk(root)
		if err != nil {
			return nil, &domain.ResourceError{Path: root, Err: err}
		}
		u.log.Debug("walked source root", map[string]any{"root": root, "files": len(found)})
		if len(roots) > 1 {
			prefix := filepath.ToSlash(filepath.Clean(root))
			for i := range found {
				found[i].Path = path.Join(prefix, found[i].Path)
			}
		}
		files = append(files, found...)
	}
	return files, nil
}

func workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// extractAll reads and extracts every file on a bounded pool. Results keep the
// file order; when several files fail, the first in file order is reported.
func (u *GenerateUseCase) extractAll(ctx context.Context, files []port.FileInfo, req GenerateRequest) ([]*domain.FileResult, error) {
	results := make([]*domain.FileResult, len(files))
	errs := make([]error, len(files))
	progress := newCounter(len(files), req.Progress)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers(req.Workers))

	for i, f := range files {
		i, f := i, f
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = u.extractFile(f)
			progress.inc()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := firstError(errs); err != nil {
		return nil, err
	}
	return results, nil
}

func (u *GenerateUseCase) extractFile(f port.FileInfo) (*domain.FileResult, error) {
	text, err := u.source.ReadFile(f.AbsPath)
	if err != nil {
		return nil, &domain.ResourceError{Path: f.AbsPath, Err: err}
	}
	src := domain.SourceUnit{
		Path:    f.Path,
		AbsPath: f.AbsPath,
		Lang:    u.extractor.Language(f.Path),
		Text:    text,
	}
	result, ignored, err := u.extractor.Extract(src)
	if err != nil {
		return nil, err
	}
	for _, ig := range ignored {
		u.log.Debug("block ignored", map[string]any{"File": ig.File, "Block": ig.Ref()})
	}
	if len(result.Units) > 0 {
		u.log.Debug("parsed file", map[string]any{"File": f.Path, "units": len(result.Units)})
	}
	return result, nil
}

// normalizeAll resolves and normalizes endpoint units in parallel. The symbol
// table and resolver are read-only at this point.
func (u *GenerateUseCase) normalizeAll(ctx context.Context, units []*domain.DocUnit, res *resolver.Resolver, norm *normalizer.Normalizer, n int) ([]*domain.Endpoint, error) {
	endpoints := make([]*domain.Endpoint, len(units))
	errs := make([]error, len(units))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers(n))

	for i, unit := range units {
		i, unit := i, unit
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			elements, err := res.Resolve(unit)
			if err != nil {
				errs[i] = err
				return nil
			}
			endpoints[i], errs[i] = norm.Normalize(unit, elements)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := firstError(errs); err != nil {
		return nil, err
	}
	return endpoints, nil
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Run executes one generation and reports the outcome the way callers expect:
// (nil, true) when there is nothing to do, (result, true) on success and
// (nil, false) on failure. Failures are logged here, once, with their context.
func Run(ctx context.Context, uc *GenerateUseCase, req GenerateRequest) (*GenerateResult, bool) {
	result, err := uc.Generate(ctx, req)
	if err != nil {
		Report(uc.log, err)
		return nil, false
	}
	return result, true
}

// Report logs err at error level with the structured context of typed errors.
func Report(log port.Logger, err error) {
	var re domain.RunError
	if errors.As(err, &re) {
		fields := re.Fields()
		fields["kind"] = re.Kind().String()
		log.Error(re.Error(), fields)
		return
	}
	log.Error(fmt.Sprintf("generation failed: %v", err), nil)
}
