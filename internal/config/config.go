// Package config loads project configuration for the indexer from a
// textindex.toml file. Values merge over defaults; CLI flags override
// whatever the file says.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/FocuswithJustin/TextIndex/core/concord"
	ierr "github.com/FocuswithJustin/TextIndex/core/errors"
	"github.com/FocuswithJustin/TextIndex/core/locator"
	"github.com/FocuswithJustin/TextIndex/internal/fileutil"
)

// FileName is the project configuration file looked up next to the
// document being processed.
const FileName = "textindex.toml"

// Config is the full project configuration.
type Config struct {
	Rendering   Rendering   `toml:"rendering"`
	Locators    Locators    `toml:"locators"`
	Concordance Concordance `toml:"concordance"`
	Catalog     Catalog     `toml:"catalog"`
}

// Rendering controls index presentation.
type Rendering struct {
	SeeLabel      string `toml:"see_label"`
	SeeAlsoLabel  string `toml:"see_also_label"`
	IDPrefix      string `toml:"id_prefix"`
	GroupHeadings bool   `toml:"group_headings"`
	EmphasisFirst bool   `toml:"sort_emphasis_first"`
}

// Locators selects the locator mode.
type Locators struct {
	Mode     string `toml:"mode"`      // "reference" or "paginated"
	PageSize int    `toml:"page_size"` // bytes per page for the windowed pager
}

// Concordance holds auto-marking rules: inline in the config file,
// from a TSV file, or both (inline rules apply first).
type Concordance struct {
	Rules []Rule `toml:"rules"`
	File  string `toml:"file"`
}

// Rule is one inline concordance rule.
type Rule struct {
	Pattern     string `toml:"pattern"`
	Replacement string `toml:"replacement"`
}

// Catalog locates the run catalog database.
type Catalog struct {
	Path string `toml:"path"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Rendering: Rendering{
			SeeLabel:     "see",
			SeeAlsoLabel: "see also",
			IDPrefix:     "idx",
		},
		Locators: Locators{
			Mode:     "reference",
			PageSize: 2000,
		},
		Catalog: Catalog{
			Path: "textindex.db",
		},
	}
}

// Load reads a configuration file, merging its values over defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	abs, err := fileutil.ExpandUser(path)
	if err != nil {
		return cfg, err
	}
	if _, err := toml.DecodeFile(abs, &cfg); err != nil {
		return Default(), fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

// Discover looks for FileName in dir and loads it when present. The
// returned path is empty when no file was found and defaults apply.
func Discover(dir string) (Config, string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Default(), "", nil
		}
		return Default(), "", err
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// Mode translates the configured locator mode name.
func (l Locators) LocatorMode() (locator.Mode, error) {
	switch l.Mode {
	case "", "reference":
		return locator.ModeReference, nil
	case "paginated":
		return locator.ModePaginated, nil
	default:
		return 0, ierr.Wrapf(ierr.ErrInvalidInput, "locator mode %q", l.Mode)
	}
}

// CompileRules builds the full concordance rule list: inline rules
// first, then rules from the TSV file when one is configured.
func (c Concordance) CompileRules() ([]concord.Rule, error) {
	var rules []concord.Rule
	for i, r := range c.Rules {
		rule, err := concord.Compile(r.Pattern, r.Replacement)
		if err != nil {
			return nil, ierr.Wrapf(err, "concordance rule %d", i+1)
		}
		rules = append(rules, rule)
	}
	if c.File != "" {
		data, err := fileutil.ReadDocument(c.File)
		if err != nil {
			return nil, fmt.Errorf("concordance file: %w", err)
		}
		fileRules, err := concord.ParseTSV(data)
		if err != nil {
			return nil, err
		}
		rules = append(rules, fileRules...)
	}
	return rules, nil
}
