package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"kastelo.dev/cfgxlsx/excel"
	"kastelo.dev/cfgxlsx/history"
)

// errDiffer makes the diff command exit non-zero without an error message.
var errDiffer = errors.New("inputs differ")

type cli struct {
	app    *kingpin.Application
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
	log    zerolog.Logger

	logLevel   *string
	historyDSN *string
	styleFile  *string

	cmdConvert     *kingpin.CmdClause
	convertInput   *string
	convertOutput  *string
	convertDir     *string
	convertCharset *string

	cmdServe       *kingpin.CmdClause
	serveListen    *string
	serveMaxUpload *string

	cmdDiff     *kingpin.CmdClause
	diffA       *string
	diffB       *string
	diffCharset *string

	cmdInspect  *kingpin.CmdClause
	inspectFile *string

	cmdHistory   *kingpin.CmdClause
	historyLimit *int
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer) *cli {
	c := &cli{
		app:    kingpin.New("cfgxlsx", "Convert sectioned key=value configuration files to Excel workbooks."),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
	}
	c.app.Writer(stdout).ErrorWriter(stderr).UsageWriter(stderr)

	c.logLevel = c.app.Flag("log-level", "Log level").Default("info").Envar("CFGXLSX_LOG_LEVEL").Enum("debug", "info", "warn", "error")
	c.historyDSN = c.app.Flag("history-dsn", "Record conversions in this database (postgres://..., sqlite3://... or a file path)").Envar("CFGXLSX_HISTORY_DSN").String()
	c.styleFile = c.app.Flag("style", "YAML file with workbook options").Envar("CFGXLSX_STYLE").ExistingFile()

	c.cmdConvert = c.app.Command("convert", "Convert a configuration file").Default()
	c.convertInput = c.cmdConvert.Arg("file", "Input file (default stdin)").ExistingFile()
	c.convertOutput = c.cmdConvert.Flag("output", "Output file (default derived from the input name)").Short('o').String()
	c.convertDir = c.cmdConvert.Flag("dir", "Directory for the derived output file").Default(".").Envar("CFGXLSX_DIR").ExistingDir()
	c.convertCharset = c.cmdConvert.Flag("charset", "Input charset").Default("utf-8").Envar("CFGXLSX_CHARSET").String()

	c.cmdServe = c.app.Command("serve", "Serve the web front end")
	c.serveListen = c.cmdServe.Flag("listen", "Listen address").Default(":8080").Envar("CFGXLSX_LISTEN").String()
	c.serveMaxUpload = c.cmdServe.Flag("max-upload", "Request body limit").Default("10M").Envar("CFGXLSX_MAX_UPLOAD").String()

	c.cmdDiff = c.app.Command("diff", "Show section differences between two configuration files")
	c.diffA = c.cmdDiff.Arg("a", "First file").Required().ExistingFile()
	c.diffB = c.cmdDiff.Arg("b", "Second file").Required().ExistingFile()
	c.diffCharset = c.cmdDiff.Flag("charset", "Input charset").Default("utf-8").Envar("CFGXLSX_CHARSET").String()

	c.cmdInspect = c.app.Command("inspect", "Print a workbook back as configuration text")
	c.inspectFile = c.cmdInspect.Arg("file", "XLSX file").Required().ExistingFile()

	c.cmdHistory = c.app.Command("history", "List recent conversions")
	c.historyLimit = c.cmdHistory.Flag("limit", "Number of conversions to list").Default("20").Int()

	return c
}

func main() {
	os.Exit(realMain(os.Args[1:], ".env", os.Stdin, os.Stdout, os.Stderr))
}

// realMain loads envFile, if it exists, runs the command line in args and
// returns the process exit status: 0 on success, 1 when diff finds
// differences and 2 on any other error.
func realMain(args []string, envFile string, stdin io.Reader, stdout, stderr io.Writer) int {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		l := newLogger(stderr, zerolog.InfoLevel)
		l.Warn().Err(err).Str("file", envFile).Msg("Error loading environment file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newCLI(stdin, stdout, stderr).run(ctx, args)
	switch {
	case errors.Is(err, errDiffer):
		return 1
	case err != nil:
		return 2
	}
	return 0
}

func (c *cli) run(ctx context.Context, args []string) error {
	cmd, err := c.app.Parse(args)
	if err != nil {
		c.app.Errorf("%s, try --help", err)
		return err
	}

	lvl, _ := zerolog.ParseLevel(*c.logLevel)
	c.log = newLogger(c.stderr, lvl)

	switch cmd {
	case c.cmdConvert.FullCommand():
		err = c.convert(ctx)
	case c.cmdServe.FullCommand():
		err = c.serve(ctx)
	case c.cmdDiff.FullCommand():
		err = c.diff()
	case c.cmdInspect.FullCommand():
		err = c.inspect()
	case c.cmdHistory.FullCommand():
		err = c.listHistory(ctx)
	}
	if err != nil && !errors.Is(err, errDiffer) {
		c.log.Error().Err(err).Str("command", cmd).Msg("Command failed")
	}
	return err
}

func (c *cli) options() (excel.Options, error) {
	if *c.styleFile == "" {
		return excel.DefaultOptions(), nil
	}
	return excel.LoadOptions(*c.styleFile)
}

// openHistory returns nil when no history DSN is configured.
func (c *cli) openHistory(ctx context.Context) (*history.Store, error) {
	if *c.historyDSN == "" {
		return nil, nil
	}
	return history.Open(ctx, *c.historyDSN)
}

func newLogger(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().
		Logger()
}
