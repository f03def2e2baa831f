package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jessevdk/go-flags"

	"github.com/ShenghuiXue/bioinformatics-hub/alphabet"
	"github.com/ShenghuiXue/bioinformatics-hub/fasta"
	"github.com/ShenghuiXue/bioinformatics-hub/store"
)

const (
	version  = "0.1.0"
	toolName = "bioinformatics-hub"
)

var errInvalidSequences = errors.New("some sequences contain invalid characters")

// GlobalOptions struct to store command line args
type GlobalOptions struct {
	Required      `group:"required"`
	fasta.Options `group:"parsing"`
	Output        `group:"output"`
	General       `group:"general"`
}

// Required struct to store required command line args
type Required struct {
	Sequence string        `short:"s" long:"sequence" value-name:"<filename>" description:"FASTA filename, '-' to read from stdin"`
	Type     alphabet.Kind `short:"t" long:"type" value-name:"<kind>" description:"Molecule kind of the sequences: dna, rna or protein" default:"dna"`
}

// Output struct to store output related command line args
type Output struct {
	IDs       bool   `long:"ids" description:"Print all sequence ids, one per line"`
	ID        string `long:"id" value-name:"<id>" description:"Print the sequence stored under this id"`
	JSON      bool   `long:"json" description:"Print all records as a JSON array"`
	Outseq    string `short:"o" long:"outseq" value-name:"<filename>" description:"Write the cleaned records to this FASTA file"`
	Width     int    `long:"width" value-name:"<n>" description:"Line width of written FASTA sequences" default:"60"`
	Validate  bool   `long:"validate" description:"Check every sequence against the alphabet of the molecule kind"`
	NumWorker int    `short:"n" long:"numcpu" value-name:"<n>" description:"Number of threads to use for validation, default is number of CPU"`
	DB        string `long:"db" value-name:"<path>" description:"Store the parsed index in this SQLite database and print its id"`
}

// General struct to store general command line args
type General struct {
	Config   string `long:"config" value-name:"<filename>" description:"Ini file with default values for any option" no-ini:"true"`
	LogLevel string `long:"log-level" value-name:"<level>" description:"Log level: debug, info, warn or error" default:"info"`
	Help     bool   `short:"h" long:"help" description:"Show this help message" no-ini:"true"`
	Version  bool   `short:"v" long:"version" description:"Print the tool version and exit" no-ini:"true"`
}

func newLogger(w io.Writer, level string) (*log.Logger, error) {
	logger := log.NewWithOptions(w, log.Options{Prefix: toolName})
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("wrong value for --log-level parameter: %s", level)
	}
	logger.SetLevel(lvl)
	return logger, nil
}

func openInput(name string, stdin io.Reader) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(stdin), nil
	}
	return os.Open(name)
}

func run(ctx context.Context, options GlobalOptions, stdin io.Reader, stdout io.Writer, logger *log.Logger) error {

	if options.Sequence == "" {
		return fmt.Errorf("missing required parameter -s | --sequence, try %s --help for details", toolName)
	}

	in, err := openInput(options.Sequence, stdin)
	if err != nil {
		return err
	}
	defer in.Close()

	idx, err := fasta.Read(in, options.Type, options.Options)
	if err != nil {
		return err
	}
	logger.Info("parsed sequences", "file", options.Sequence, "kind", options.Type, "records", idx.Size())

	if options.DB != "" {
		s, err := store.NewSQLiteStore(options.DB)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		id, err := s.Save(ctx, idx)
		if err != nil {
			return fmt.Errorf("save index: %w", err)
		}
		logger.Info("stored index", "db", options.DB, "id", id)
		fmt.Fprintln(stdout, id)
	}

	wrote := options.DB != ""

	if options.ID != "" {
		seq, err := idx.SequenceByID(options.ID)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, seq)
		wrote = true
	}

	if options.IDs {
		for _, id := range idx.SequenceIDs() {
			fmt.Fprintln(stdout, id)
		}
		wrote = true
	}

	if options.JSON {
		if err := idx.WriteJSON(stdout); err != nil {
			return err
		}
		wrote = true
	}

	if options.Outseq != "" {
		out, err := os.Create(options.Outseq)
		if err != nil {
			return err
		}
		defer out.Close()

		if err := idx.WriteFasta(out, options.Width); err != nil {
			return err
		}
		logger.Debug("wrote fasta", "file", options.Outseq, "width", options.Width)
		wrote = true
	}

	if options.Validate {
		invalid, err := fasta.Check(ctx, idx, options.NumWorker)
		if err != nil {
			return err
		}
		for _, id := range invalid {
			logger.Warn("invalid sequence", "id", id, "kind", options.Type)
		}
		if len(invalid) > 0 {
			return fmt.Errorf("%w: %d of %d", errInvalidSequences, len(invalid), idx.Size())
		}
		logger.Info("all sequences are valid", "records", idx.Size())
		wrote = true
	}

	if !wrote {
		return idx.WriteFasta(stdout, options.Width)
	}
	return nil
}

// parseOptions reads args, loading defaults from the --config ini file
// first so that explicit flags override it
func parseOptions(args []string) (GlobalOptions, *flags.Parser, error) {

	var options GlobalOptions
	p := flags.NewParser(&options, flags.Default&^flags.HelpFlag&^flags.PrintErrors)

	var pre struct {
		Config string `long:"config"`
	}
	if _, err := flags.NewParser(&pre, flags.IgnoreUnknown).ParseArgs(args); err != nil {
		return options, p, err
	}
	if pre.Config != "" {
		if err := flags.NewIniParser(p).ParseFile(pre.Config); err != nil {
			return options, p, fmt.Errorf("fail to read config %s: %w", pre.Config, err)
		}
	}

	_, err := p.ParseArgs(args)
	return options, p, err
}

func main() {

	options, p, err := parseOptions(os.Args[1:])
	if err != nil {
		fmt.Printf("wrong arguments: %v, try %s --help for more informations\n", err, toolName)
		os.Exit(1)
	}
	if options.Help {
		fmt.Printf("%s version %s\n\n", toolName, version)
		p.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	if options.Version {
		fmt.Printf("%s version %s\n", toolName, version)
		os.Exit(0)
	}

	logger, err := newLogger(os.Stderr, options.LogLevel)
	if err != nil {
		fmt.Printf("wrong arguments: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = run(ctx, options, os.Stdin, os.Stdout, logger)
	if err != nil {
		stop()
		logger.Error("fail to process sequences", "err", err)
		os.Exit(1)
	}
}
