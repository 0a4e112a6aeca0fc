// Command textindex builds back-of-book indexes from annotated plain
// text documents.
package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/TextIndex/core/concord"
	"github.com/FocuswithJustin/TextIndex/core/locator"
	"github.com/FocuswithJustin/TextIndex/core/mark"
	"github.com/FocuswithJustin/TextIndex/core/render"
	"github.com/FocuswithJustin/TextIndex/core/textindex"
	"github.com/FocuswithJustin/TextIndex/core/xml"
	"github.com/FocuswithJustin/TextIndex/internal/catalog"
	"github.com/FocuswithJustin/TextIndex/internal/config"
	"github.com/FocuswithJustin/TextIndex/internal/fileutil"
	"github.com/FocuswithJustin/TextIndex/internal/logging"
	"github.com/FocuswithJustin/TextIndex/internal/preview"
)

const version = "0.2.0"

// CLI defines the command-line interface for textindex.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" enum:"debug,info,warn,error" default:"info"`
	LogFormat string `name:"log-format" help:"Log output format (text, json)" enum:"text,json" default:"text"`
	Config    string `name:"config" help:"Project configuration file (default: textindex.toml next to the document)" type:"path"`
	Paginate  bool   `help:"Use page-number locators instead of reference ids"`
	PageSize  int    `name:"page-size" help:"Bytes per page for the windowed pager"`

	Build   BuildCmd   `cmd:"" help:"Process a document and insert its index"`
	Extract ExtractCmd `cmd:"" help:"Print the rendered index without touching the document"`
	Check   CheckCmd   `cmd:"" help:"Validate annotations without writing anything"`
	Mark    MarkCmd    `cmd:"" help:"Apply concordance rules to a document"`
	Convert ConvertCmd `cmd:"" help:"Convert LaTeX index commands to annotation tokens"`
	History HistoryCmd `cmd:"" help:"List recorded indexing runs"`
	Show    ShowCmd    `cmd:"" help:"Print the source snapshot of a recorded run"`
	Serve   ServeCmd   `cmd:"" help:"Serve a live preview of a document"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// BuildCmd processes a document and writes the rewritten result.
type BuildCmd struct {
	Path      string `arg:"" help:"Annotated document to process" type:"existingfile"`
	Output    string `short:"o" help:"Write the result here instead of in place" type:"path"`
	Backup    bool   `help:"Keep a .bak copy of the original when writing in place"`
	NoCatalog bool   `name:"no-catalog" help:"Skip recording the run in the catalog"`
}

func (c *BuildCmd) Run() error {
	cfg, err := loadConfig(c.Path)
	if err != nil {
		return err
	}
	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}

	source, err := fileutil.ReadDocument(c.Path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	start := time.Now()
	result, err := textindex.Process(source, opts)
	if err != nil {
		return fmt.Errorf("processing %s: %w", c.Path, err)
	}
	elapsed := time.Since(start)
	for _, w := range result.Warnings {
		logging.PipelineWarning(c.Path, w)
	}
	logging.DocumentProcessed(c.Path, result.Tokens, result.Entries, result.Occurrences, elapsed)

	out := c.Output
	if out == "" {
		out = c.Path
		if c.Backup {
			if err := fileutil.CopyFile(c.Path, c.Path+".bak"); err != nil {
				return fmt.Errorf("failed to write backup: %w", err)
			}
		}
	}
	if err := fileutil.WriteDocument(out, result.Document); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	if !c.NoCatalog {
		if err := recordRun(cfg, opts, c.Path, source, result, elapsed); err != nil {
			// An unwritable catalog must not fail a finished build.
			logging.Warn("catalog record failed", "path", c.Path, "error", err)
		}
	}

	fmt.Printf("Indexed: %s\n", c.Path)
	fmt.Printf("  Tokens:      %d\n", result.Tokens)
	fmt.Printf("  Entries:     %d\n", result.Entries)
	fmt.Printf("  Occurrences: %d\n", result.Occurrences)
	if len(result.Warnings) > 0 {
		fmt.Printf("  Warnings:    %d\n", len(result.Warnings))
	}
	fmt.Printf("  Output:      %s\n", out)
	return nil
}

// recordRun stores a finished build in the run catalog.
func recordRun(cfg config.Config, opts textindex.Options, path, source string, result *textindex.Result, elapsed time.Duration) error {
	store, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	run, err := store.Record(catalog.Run{
		Path:        abs,
		Mode:        modeName(opts.Mode),
		Tokens:      result.Tokens,
		Entries:     result.Entries,
		Occurrences: result.Occurrences,
		Warnings:    len(result.Warnings),
		Duration:    elapsed,
	}, source)
	if err != nil {
		return err
	}
	logging.CatalogRun(run.ID, run.Path, run.Fingerprint)
	return nil
}

// ExtractCmd prints the rendered index for a document.
type ExtractCmd struct {
	Path   string `arg:"" help:"Annotated document to read" type:"existingfile"`
	Format string `help:"Output format" enum:"html,text,latex" default:"html"`
	Query  string `help:"Print only the HTML nodes matching this XPath expression" placeholder:"XPATH"`
}

func (c *ExtractCmd) Run() error {
	cfg, err := loadConfig(c.Path)
	if err != nil {
		return err
	}
	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}

	source, err := fileutil.ReadDocument(c.Path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	result, err := textindex.Process(source, opts)
	if err != nil {
		return fmt.Errorf("processing %s: %w", c.Path, err)
	}
	for _, w := range result.Warnings {
		logging.PipelineWarning(c.Path, w)
	}

	if c.Query != "" {
		if c.Format != "html" {
			return fmt.Errorf("--query selects HTML nodes and cannot be combined with --format=%s", c.Format)
		}
		doc, err := xml.Parse(result.HTML)
		if err != nil {
			return err
		}
		nodes, err := doc.Query(c.Query)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			fmt.Println(n.Markup())
		}
		return nil
	}

	switch c.Format {
	case "text":
		fmt.Print(render.Text(result.Tree))
	case "latex":
		fmt.Print(render.LaTeX(result.Tree))
	default:
		fmt.Print(result.HTML)
	}
	return nil
}

// CheckCmd runs the pipeline and reports problems without writing.
type CheckCmd struct {
	Path string `arg:"" help:"Annotated document to validate" type:"existingfile"`
}

func (c *CheckCmd) Run() error {
	cfg, err := loadConfig(c.Path)
	if err != nil {
		return err
	}
	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}

	source, err := fileutil.ReadDocument(c.Path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	result, err := textindex.Process(source, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Checked: %s\n", c.Path)
	fmt.Printf("  Tokens:      %d\n", result.Tokens)
	fmt.Printf("  Entries:     %d\n", result.Entries)
	fmt.Printf("  Occurrences: %d\n", result.Occurrences)
	if len(result.Warnings) > 0 {
		fmt.Printf("  Warnings:\n")
		for _, w := range result.Warnings {
			fmt.Printf("    %s\n", w)
		}
		return nil
	}
	fmt.Println("No problems found.")
	return nil
}

// MarkCmd applies concordance rules and emits the marked document.
type MarkCmd struct {
	Path   string `arg:"" help:"Document to mark" type:"existingfile"`
	Rules  string `help:"Concordance rule file (term<TAB>directive body)" type:"existingfile"`
	Output string `short:"o" help:"Write the marked document here instead of stdout" type:"path"`
}

func (c *MarkCmd) Run() error {
	cfg, err := loadConfig(c.Path)
	if err != nil {
		return err
	}
	if c.Rules != "" {
		cfg.Concordance.File = c.Rules
	}
	rules, err := cfg.Concordance.CompileRules()
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		return fmt.Errorf("no concordance rules configured: pass --rules or add [concordance] to %s", config.FileName)
	}

	source, err := fileutil.ReadDocument(c.Path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	marked, marks := concord.Mark(source, rules)
	logging.ConcordanceApplied(c.Path, len(rules), marks)

	if c.Output == "" {
		fmt.Print(marked)
		return nil
	}
	if err := fileutil.WriteDocument(c.Output, marked); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	fmt.Printf("Marked: %s\n", c.Path)
	fmt.Printf("  Rules:  %d\n", len(rules))
	fmt.Printf("  Marks:  %d\n", marks)
	fmt.Printf("  Output: %s\n", c.Output)
	return nil
}

// ConvertCmd rewrites LaTeX \index{} commands into annotation tokens
// so legacy manuscripts can enter the pipeline.
type ConvertCmd struct {
	Path   string `arg:"" help:"Document to convert" type:"existingfile"`
	Output string `short:"o" help:"Write the converted document here instead of stdout" type:"path"`
}

func (c *ConvertCmd) Run() error {
	source, err := fileutil.ReadDocument(c.Path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	converted, count := mark.ConvertLaTeX(source)

	if c.Output == "" {
		fmt.Print(converted)
		return nil
	}
	if err := fileutil.WriteDocument(c.Output, converted); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	fmt.Printf("Converted: %s\n", c.Path)
	fmt.Printf("  Commands: %d\n", count)
	fmt.Printf("  Output:   %s\n", c.Output)
	return nil
}

// HistoryCmd lists recorded indexing runs, newest first.
type HistoryCmd struct {
	Path  string `help:"Only list runs for this document" type:"path"`
	Limit int    `help:"Maximum number of runs to list" default:"20"`
}

func (c *HistoryCmd) Run() error {
	store, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	path := c.Path
	if path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	runs, err := store.List(path, c.Limit)
	if err != nil {
		return err
	}

	fmt.Printf("Runs in catalog: %s\n\n", store.Path())
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	for _, run := range runs {
		fmt.Printf("  %s\n", run.ID)
		fmt.Printf("    When:        %s\n", run.CreatedAt.Format(time.RFC3339))
		fmt.Printf("    Path:        %s\n", run.Path)
		fmt.Printf("    Mode:        %s\n", run.Mode)
		fmt.Printf("    Entries:     %d (%d occurrences, %d tokens)\n", run.Entries, run.Occurrences, run.Tokens)
		if run.Warnings > 0 {
			fmt.Printf("    Warnings:    %d\n", run.Warnings)
		}
		fmt.Printf("    Duration:    %s\n", run.Duration)
		fmt.Printf("    Fingerprint: %s\n", run.Fingerprint[:16]+"...")
	}
	return nil
}

// ShowCmd prints the stored source snapshot of a run, so
// `textindex show <id> > draft.txt` restores the document as it was.
type ShowCmd struct {
	RunID string `arg:"" help:"Run id (a unique prefix is enough)"`
	Info  bool   `help:"Print run details instead of the snapshot"`
}

func (c *ShowCmd) Run() error {
	store, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	if c.Info {
		run, err := store.Get(c.RunID)
		if err != nil {
			return err
		}
		fmt.Printf("Run: %s\n", run.ID)
		fmt.Printf("  When:        %s\n", run.CreatedAt.Format(time.RFC3339))
		fmt.Printf("  Path:        %s\n", run.Path)
		fmt.Printf("  Mode:        %s\n", run.Mode)
		fmt.Printf("  Tokens:      %d\n", run.Tokens)
		fmt.Printf("  Entries:     %d\n", run.Entries)
		fmt.Printf("  Occurrences: %d\n", run.Occurrences)
		fmt.Printf("  Warnings:    %d\n", run.Warnings)
		fmt.Printf("  Duration:    %s\n", run.Duration)
		fmt.Printf("  Fingerprint: %s\n", run.Fingerprint)
		return nil
	}

	_, source, err := store.Snapshot(c.RunID)
	if err != nil {
		return err
	}
	fmt.Print(source)
	return nil
}

// ServeCmd runs the live preview server.
type ServeCmd struct {
	Path string `arg:"" help:"Document to serve" type:"existingfile"`
	Port int    `help:"HTTP server port" default:"8080"`
}

func (c *ServeCmd) Run() error {
	cfg, err := loadConfig(c.Path)
	if err != nil {
		return err
	}
	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}
	srv := preview.New(preview.Config{
		Port:    c.Port,
		Path:    c.Path,
		Options: opts,
	})
	return srv.Start(context.Background())
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("textindex version %s\n", version)
	fmt.Printf("  SQLite driver: %s (%s, %s)\n", catalog.DriverName(), catalog.DriverType(), catalog.DriverPackage())
	return nil
}

// Helper functions

// loadConfig resolves the project configuration for a document: the
// --config file when given, otherwise textindex.toml next to the
// document, otherwise defaults.
func loadConfig(docPath string) (config.Config, error) {
	if CLI.Config != "" {
		return config.Load(CLI.Config)
	}
	cfg, _, err := config.Discover(filepath.Dir(docPath))
	return cfg, err
}

// openCatalog opens the run catalog for document-less commands, which
// discover their configuration in the working directory.
func openCatalog() (*catalog.Store, error) {
	cfg := config.Default()
	if CLI.Config != "" {
		loaded, err := config.Load(CLI.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if discovered, _, err := config.Discover("."); err == nil {
		cfg = discovered
	}
	return catalog.Open(cfg.Catalog.Path)
}

// pipelineOptions translates configuration into pipeline options.
// Global flags override the file.
func pipelineOptions(cfg config.Config) (textindex.Options, error) {
	mode, err := cfg.Locators.LocatorMode()
	if err != nil {
		return textindex.Options{}, err
	}
	opts := textindex.Options{
		Mode:          mode,
		SeeLabel:      cfg.Rendering.SeeLabel,
		SeeAlsoLabel:  cfg.Rendering.SeeAlsoLabel,
		IDPrefix:      cfg.Rendering.IDPrefix,
		GroupHeadings: cfg.Rendering.GroupHeadings,
		EmphasisFirst: cfg.Rendering.EmphasisFirst,
	}
	if CLI.Paginate {
		opts.Mode = locator.ModePaginated
	}
	if opts.Mode == locator.ModePaginated {
		pageSize := cfg.Locators.PageSize
		if CLI.PageSize > 0 {
			pageSize = CLI.PageSize
		}
		opts.Pager = locator.BytePager(pageSize)
	}
	return opts, nil
}

func modeName(m locator.Mode) string {
	if m == locator.ModePaginated {
		return "paginated"
	}
	return "reference"
}

func initLogging() {
	level := logging.LevelInfo
	switch CLI.LogLevel {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	format := logging.FormatText
	if CLI.LogFormat == "json" {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("textindex"),
		kong.Description("Back-of-book index builder for annotated plain text"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	initLogging()
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
