// Command syngdict compiles CC-CEDICT sources into an offline dictionary
// and answers lookups against the result.
//
// Commands:
//
//	compile   parse sources, build indices, write artifacts (and optionally
//	          a SQLite file and a PostgreSQL publish)
//	lookup    search a compiled dictionary by pinyin, English or characters
//	migrate   apply schema migrations to the SQLite or PostgreSQL target
//	version   print version information
//
// Exit codes: 0 = success, 1 = error or malformed source lines.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/heartmarshall/syngdict/internal/app"
	"github.com/heartmarshall/syngdict/internal/config"
	"github.com/heartmarshall/syngdict/internal/domain"
	"github.com/heartmarshall/syngdict/internal/service/lookup"
	"github.com/heartmarshall/syngdict/migrations"
)

// Globals are flags shared by every command.
type Globals struct {
	Config string `name:"config" short:"c" help:"Path to YAML config file" type:"path" env:"CONFIG_PATH"`
}

// CLI defines the command-line interface for syngdict.
var CLI struct {
	Globals

	Compile CompileCmd `cmd:"" help:"Compile dictionary sources"`
	Lookup  LookupCmd  `cmd:"" help:"Search a compiled dictionary"`
	Migrate MigrateCmd `cmd:"" help:"Apply schema migrations"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// CompileCmd runs the compiler pipeline. Flags override config values.
type CompileCmd struct {
	Source  string `help:"Directory of CC-CEDICT source files" type:"path"`
	Out     string `help:"Output directory for artifacts" type:"path"`
	HSK     string `name:"hsk" help:"HSK word list (CSV)" type:"path"`
	Strict  bool   `help:"Abort on the first malformed line"`
	SQLite  string `name:"sqlite" help:"Also write a SQLite database to this path" type:"path"`
	Publish string `help:"Also publish the build to this PostgreSQL DSN"`
}

func (c *CompileCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	if c.Source != "" {
		cfg.Source.Dir = c.Source
	}
	if c.Out != "" {
		cfg.Output.Dir = c.Out
	}
	if c.HSK != "" {
		cfg.Source.HSKPath = c.HSK
	}
	if c.Strict {
		cfg.Source.Strict = true
	}
	if c.SQLite != "" {
		cfg.Output.SQLitePath = c.SQLite
	}
	if c.Publish != "" {
		cfg.Database.DSN = c.Publish
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: validate: %w", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.Timeout)
	defer cancel()

	pipeline, err := app.Compile(ctx, cfg, logger)
	if err != nil {
		logger.Error("compile failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	stats := pipeline.BuildStats()
	logger.Info("compile completed",
		slog.String("build_id", pipeline.Build().ID.String()),
		slog.Int("entries", stats.Entries),
		slog.Int("diagnostics", len(pipeline.Diagnostics())),
	)

	if pipeline.HasErrors() {
		logger.Warn("compile completed with errors")
		os.Exit(1)
	}
	return nil
}

// LookupCmd searches a compiled dictionary.
type LookupCmd struct {
	Dir   string   `help:"Artifact directory (default: output.dir)" type:"path"`
	From  string   `help:"Where to search: artifacts, sqlite or postgres" enum:"artifacts,sqlite,postgres" default:"artifacts"`
	By    string   `help:"Index to search: pinyin, english, traditional or simplified" enum:"pinyin,english,traditional,simplified" default:"pinyin"`
	Limit int      `help:"Maximum number of results (0 = all)" default:"0"`
	Query []string `arg:"" help:"Search text"`
}

func (c *LookupCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	if c.Dir != "" {
		cfg.Output.Dir = c.Dir
	}

	logger := app.NewLogger(cfg.Log)

	kind, err := domain.ParseIndexKind(c.By)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.Timeout)
	defer cancel()

	entries, err := app.Search(ctx, cfg, logger, c.From, lookup.SearchInput{
		Kind:  kind,
		Query: strings.Join(c.Query, " "),
		Limit: c.Limit,
	})
	if err != nil {
		return err
	}

	for _, e := range entries {
		fmt.Println(formatEntry(e))
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no matches")
	}
	return nil
}

// MigrateCmd applies the embedded schema migrations.
type MigrateCmd struct {
	Target string `help:"Database to migrate" enum:"sqlite,postgres" default:"sqlite"`
	SQLite string `name:"sqlite" help:"SQLite database path (default: output.sqlite_path)" type:"path"`
	DSN    string `name:"dsn" help:"PostgreSQL DSN (default: database.dsn)"`
}

func (c *MigrateCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	if c.SQLite != "" {
		cfg.Output.SQLitePath = c.SQLite
	}
	if c.DSN != "" {
		cfg.Database.DSN = c.DSN
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.Timeout)
	defer cancel()

	n, err := app.Migrate(ctx, cfg, migrations.Target(c.Target))
	if err != nil {
		return err
	}

	logger.Info("migrations applied", slog.String("target", c.Target), slog.Int("applied", n))
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("syngdict %s\n", app.BuildVersion())
	return nil
}

func loadConfig(g *Globals) (*config.Config, error) {
	cfg, err := config.LoadFrom(g.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func formatEntry(e domain.WordEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s [%s] /%s/", e.Traditional, e.Simplified, e.PinyinMarks, strings.Join(e.English, "/"))
	if e.HSK > 0 {
		fmt.Fprintf(&b, " HSK%d", e.HSK)
	}
	if e.HasMeasureWords() {
		mws := make([]string, len(e.MeasureWords))
		for i, m := range e.MeasureWords {
			mws[i] = m.Simplified + "[" + m.PinyinMarks + "]"
		}
		fmt.Fprintf(&b, " CL:%s", strings.Join(mws, ","))
	}
	return b.String()
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("syngdict"),
		kong.Description("CC-CEDICT to offline dictionary compiler"),
		kong.UsageOnError(),
		kong.Bind(&CLI.Globals),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
