package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"apidoc/config"
	"apidoc/internal/adapter/cache"
	"apidoc/internal/adapter/comment"
	"apidoc/internal/adapter/fs"
	"apidoc/internal/adapter/logging"
	"apidoc/internal/adapter/markdown"
	"apidoc/internal/adapter/store"
	"apidoc/internal/domain"
	"apidoc/internal/extractor"
	"apidoc/internal/port"
	"apidoc/internal/usecase"
)

const (
	dataFile    = "api_data.json"
	projectFile = "api_project.json"

	generatorName = "apidoc"
	generatorURL  = "https://apidocjs.com"
)

var (
	inputs         []string
	outputDir      string
	fileFilters    []string
	excludeFilters []string
	excludeDirs    []string
	noMarkdown     bool
	excludePrivate bool
	dryRun         bool
	historyPath    string
	watch          bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate documentation data",
	Long: `Scan the input directories for documentation blocks and write
api_data.json and api_project.json into the output directory.

Examples:
  apidoc generate                          # Use apidoc.yaml settings
  apidoc generate -i api/ -i lib/ -o doc/  # Two inputs, processed in order
  apidoc generate -f ".*\\.go$" --private  # Only Go files, drop private endpoints`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringArrayVarP(&inputs, "input", "i", nil, "input directory (repeatable, processed in order)")
	f.StringVarP(&outputDir, "output", "o", "", "output directory")
	f.StringArrayVarP(&fileFilters, "file-filters", "f", nil, "regular expression selecting files to scan (repeatable)")
	f.StringArrayVarP(&excludeFilters, "exclude-filters", "e", nil, "regular expression excluding files (repeatable)")
	f.StringArrayVar(&excludeDirs, "exclude-dirs", nil, "glob of directories not to descend into (repeatable)")
	f.BoolVar(&noMarkdown, "no-markdown", false, "do not render descriptions as markdown")
	f.BoolVar(&excludePrivate, "private", false, "exclude endpoints marked @apiPrivate")
	f.BoolVar(&dryRun, "dry-run", false, "parse and validate without writing output")
	f.StringVar(&historyPath, "history", "", "bolt database recording each generated version")
	f.BoolVarP(&watch, "watch", "w", false, "regenerate whenever an input changes")
	rootCmd.AddCommand(generateCmd)
}

// applyFlags lets command line flags override the configuration file.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("input") {
		c.Input.Src = inputs
	}
	if f.Changed("output") {
		c.Output.Dir = outputDir
	}
	if f.Changed("file-filters") {
		c.Input.IncludeFilters = fileFilters
	}
	if f.Changed("exclude-filters") {
		c.Input.ExcludeFilters = excludeFilters
	}
	if f.Changed("exclude-dirs") {
		c.Input.ExcludeDirs = excludeDirs
	}
	if noMarkdown {
		c.Markdown = false
	}
	if excludePrivate {
		c.ExcludePrivate = true
	}
	if f.Changed("history") {
		c.Output.History = historyPath
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	comments, err := comment.NewExtractor(cfg.Input.Languages)
	if err != nil {
		return fmt.Errorf("languages: %w", err)
	}
	walker, err := fs.NewWalker(cfg.Input.IncludeFilters, cfg.Input.ExcludeFilters, cfg.Input.ExcludeDirs)
	if err != nil {
		return err
	}

	var renderer port.Renderer
	if cfg.Markdown {
		renderer = cache.NewCachedRenderer(markdown.New(), cache.NewRenderCache(0))
	}

	project, err := cfg.Metadata(renderer)
	if err != nil {
		usecase.Report(log, err)
		return errReported
	}

	roots := resolveRoots(cfg)
	uc := usecase.NewGenerateUseCase(walker, extractor.New(comments), renderer, log)
	run := func(ctx context.Context) error {
		return generateOnce(ctx, cfg, uc, roots, project, log)
	}

	if !watch {
		return run(cmd.Context())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if err := run(ctx); err != nil && err != errReported {
		return err
	}
	log.Info("Watching for changes.", map[string]any{"inputs": roots})
	return fs.NewWatcher(walker, 0, log).Watch(ctx, roots, func() {
		if err := run(ctx); err != nil && err != errReported {
			log.Error(err.Error(), nil)
		}
	})
}

func generateOnce(ctx context.Context, cfg *config.Config, uc *usecase.GenerateUseCase, roots []string, project domain.ProjectMetadata, log *logging.Logger) error {
	generatedAt := generationTime()
	req := usecase.GenerateRequest{
		Roots:   roots,
		Project: project,
		Generator: domain.Generator{
			Name:    generatorName,
			Version: Version,
			Time:    generatedAt.Format(time.RFC3339),
			URL:     generatorURL,
		},
		ExcludePrivate: cfg.ExcludePrivate,
		Workers:        cfg.Workers,
	}
	if !silentFlag && !watch {
		req.Progress = progressReporter()
	}

	result, ok := usecase.Run(ctx, uc, req)
	if !ok {
		return errReported
	}
	if result == nil {
		log.Info("Nothing to do.", nil)
		return nil
	}

	fields := map[string]any{"endpoints": result.Endpoints, "files": result.Files}
	if dryRun {
		log.Info("Dry run, no output written.", fields)
		return nil
	}

	outDir := cfg.Output.Dir
	if !filepath.IsAbs(outDir) && outputDir == "" {
		outDir = filepath.Join(cfg.Dir(), outDir)
	}
	if err := writeOutput(outDir, result); err != nil {
		return err
	}
	fields["output"] = outDir
	log.Info("Done.", fields)

	if path := cfg.HistoryPath(); path != "" {
		if err := recordHistory(path, project.Version, generatedAt, result); err != nil {
			return fmt.Errorf("history: %w", err)
		}
		log.Verbose("recorded version in history", map[string]any{"version": project.Version, "history": path})
	}
	return nil
}

// resolveRoots resolves configured inputs against the configuration directory,
// keeping their order. Inputs given on the command line are used as is. Roots
// below the working directory are made relative to it, since they label file
// names in the output when there are several.
func resolveRoots(c *config.Config) []string {
	wd, _ := os.Getwd()
	roots := make([]string, 0, len(c.Input.Src))
	for _, src := range c.Input.Src {
		if !filepath.IsAbs(src) && len(inputs) == 0 {
			src = filepath.Join(c.Dir(), src)
		}
		if wd != "" && filepath.IsAbs(src) {
			if rel, err := filepath.Rel(wd, src); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				src = rel
			}
		}
		roots = append(roots, src)
	}
	return roots
}

// generationTime honours SOURCE_DATE_EPOCH for reproducible output.
func generationTime() time.Time {
	if v := os.Getenv("SOURCE_DATE_EPOCH"); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Unix(secs, 0).UTC()
		}
	}
	return time.Now().UTC()
}

func writeOutput(dir string, result *usecase.GenerateResult) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, dataFile), []byte(result.Data), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dataFile, err)
	}
	if err := os.WriteFile(filepath.Join(dir, projectFile), []byte(result.Project), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", projectFile, err)
	}
	return nil
}

func recordHistory(path, version string, at time.Time, result *usecase.GenerateResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	st, err := store.NewBoltStore(path)
	if err != nil {
		return err
	}
	defer st.Close()

	return st.Put(port.Snapshot{
		Version:     version,
		GeneratedAt: at,
		Endpoints:   result.Endpoints,
		Data:        result.Data,
		Project:     result.Project,
	})
}

// progressReporter draws a progress bar on stderr, created once the number of
// files is known.
func progressReporter() func(done, total int) {
	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var startTime time.Time

	return func(done, total int) {
		barMu.Lock()
		defer barMu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Parsing[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)
		}

		_ = bar.Set(done)

		if done > 0 && done < total {
			elapsed := time.Since(startTime)
			rate := float64(done) / elapsed.Seconds()
			if rate > 0 {
				eta := time.Duration(float64(total-done)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]Parsing[reset] ETA: %s", formatDuration(eta)))
			}
		}
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
