// Command tablequery renders filtered, transformed and sorted views of
// spreadsheet-like tables.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/tablequery/internal/config"
	"github.com/vegasq/tablequery/internal/logging"
	"github.com/vegasq/tablequery/output"
	"github.com/vegasq/tablequery/query"
	"github.com/vegasq/tablequery/reader"
)

var version = "dev"

// CLI defines the command-line interface for tablequery.
type CLI struct {
	Config    string `help:"Configuration file" default:"tablequery.yaml" type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)" name:"log-level"`
	LogFormat string `help:"Log format (text, json)" name:"log-format"`
	Source    string `help:"Table source (dir, sqlite)"`
	TablesDir string `help:"Directory of table files" name:"tables-dir" type:"path"`
	Database  string `help:"SQLite database file" type:"path"`

	Query     QueryCmd     `cmd:"" help:"Query a table and render the result"`
	Import    ImportCmd    `cmd:"" help:"Store a table file in the SQLite database"`
	Tables    TablesCmd    `cmd:"" help:"List the tables of the configured source"`
	Functions FunctionsCmd `cmd:"" help:"List the functions usable in expressions"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// env is what every command runs with.
type env struct {
	ctx    context.Context
	cfg    config.Config
	stdout io.Writer
}

// apply overrides config values with the flags that were given.
func (c *CLI) apply(cfg *config.Config) {
	overrides := []struct {
		flag string
		dst  *string
	}{
		{c.LogLevel, &cfg.LogLevel},
		{c.LogFormat, &cfg.LogFormat},
		{c.Source, &cfg.Source},
		{c.TablesDir, &cfg.TablesDir},
		{c.Database, &cfg.Database},
	}
	for _, o := range overrides {
		if o.flag != "" {
			*o.dst = o.flag
		}
	}
}

// openStore opens the configured table source. The returned close function
// is never nil.
func openStore(cfg config.Config) (reader.Store, func() error, error) {
	switch strings.ToLower(cfg.Source) {
	case config.SourceSQLite:
		s, err := reader.OpenSQLite(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return reader.NewDirStore(cfg.TablesDir), func() error { return nil }, nil
	}
}

// QueryCmd runs a query against one table.
type QueryCmd struct {
	Table string `arg:"" optional:"" help:"Table title"`
	ID    int64  `help:"Table ID, instead of a title" name:"id"`

	Columns     string `short:"c" help:"Columns to show: {Name,Label:expression}"`
	ColumnNames string `help:"Display labels: {Label1,,Label3}" name:"column-names"`
	Filter      string `short:"f" help:"Structural filter: {Field:{v1,v2}},{Date:{TODAY,min,max}}"`
	Select      string `short:"s" help:"Row filter expression, e.g. \"Dept = 'Sales' and Age > 30\""`
	Sort        string `help:"Sort fields: Field1+Field2,Descending"`
	Title       string `help:"Caption shown above the output"`
	CSSClass    string `help:"Extra CSS class for HTML output" name:"css-class"`
	Format      string `short:"o" help:"Output format (table, card, json, csv, text)"`
	Today       string `help:"Use this date (YYYY-MM-DD) as today"`
}

func (c *QueryCmd) Run(e *env) error {
	if c.Table == "" && c.ID == 0 {
		return errors.New("a table title or --id is required")
	}

	now := time.Now
	if c.Today != "" {
		day, err := time.Parse(time.DateOnly, c.Today)
		if err != nil {
			return fmt.Errorf("invalid --today: %w", err)
		}
		now = func() time.Time { return day }
	}

	format := c.Format
	if format == "" {
		format = e.cfg.DefaultFormat
	}
	formatter, err := output.ForName(format, e.stdout)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(e.cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var table *reader.Table
	if c.ID != 0 {
		table, err = store.TableByID(e.ctx, c.ID)
	} else {
		table, err = store.TableByName(e.ctx, c.Table)
	}
	if err != nil {
		return err
	}

	q := query.Run(e.ctx, table, query.Options{
		Columns:             c.Columns,
		ColumnNames:         c.ColumnNames,
		Filter:              c.Filter,
		Select:              c.Select,
		Sort:                c.Sort,
		Title:               c.Title,
		CSSClass:            c.CSSClass,
		DownloadDescription: e.cfg.DownloadDescription,
		ContentURL:          e.cfg.ContentURL,
		Lister:              reader.DirLister{Root: e.cfg.ContentDir},
		Now:                 now,
	})
	return formatter.Format(q)
}

// ImportCmd stores a table file in the SQLite database.
type ImportCmd struct {
	File  string `arg:"" help:"CSV, XLSX, JSON or Parquet file" type:"existingfile"`
	Title string `help:"Table title (defaults to the file name)"`
}

func (c *ImportCmd) Run(e *env) error {
	table, err := reader.ReadFile(c.File)
	if err != nil {
		return err
	}
	title := table.Title
	if c.Title != "" {
		title = c.Title
	}

	store, err := reader.OpenSQLite(e.cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.Put(e.ctx, title, table.Rows)
	if err != nil {
		return err
	}
	logging.Info("table imported", "title", title, "id", id, "rows", len(table.Data()))
	fmt.Fprintf(e.stdout, "Imported %q as table %d (%d rows)\n", title, id, len(table.Data()))
	return nil
}

// TablesCmd lists the tables of the configured source.
type TablesCmd struct{}

func (c *TablesCmd) Run(e *env) error {
	var (
		infos []reader.TableInfo
		err   error
	)
	switch strings.ToLower(e.cfg.Source) {
	case config.SourceSQLite:
		store, oerr := reader.OpenSQLite(e.cfg.Database)
		if oerr != nil {
			return oerr
		}
		defer store.Close()
		infos, err = store.List(e.ctx)
	default:
		infos, err = reader.NewDirStore(e.cfg.TablesDir).List()
	}
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(e.stdout)
	table.SetHeader([]string{"ID", "Title", "Path"})
	for _, info := range infos {
		table.Append([]string{strconv.FormatInt(info.ID, 10), info.Title, info.Path})
	}
	table.Render()
	return nil
}

// FunctionsCmd lists the expression functions.
type FunctionsCmd struct{}

func (c *FunctionsCmd) Run(e *env) error {
	table := tablewriter.NewWriter(e.stdout)
	table.SetHeader([]string{"Function", "Description"})
	table.SetAutoWrapText(false)
	for _, fn := range query.Functions() {
		table.Append([]string{fn.Name() + "()", fn.Description()})
	}
	table.Render()
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(e *env) error {
	fmt.Fprintf(e.stdout, "tablequery %s\n", version)
	return nil
}

// run parses args, loads the configuration and runs the selected command.
func run(args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("tablequery"),
		kong.Description("Query spreadsheet-like tables with the TablePress query language"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	cli.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logging.InitLoggerWithWriter(stderr, logging.ParseLevel(cfg.LogLevel), logging.ParseFormat(cfg.LogFormat))

	return kctx.Run(&env{ctx: context.Background(), cfg: cfg, stdout: stdout})
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
