package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/dinos/internal/codec"
	"github.com/hpungsan/dinos/internal/config"
	"github.com/hpungsan/dinos/internal/dino"
	"github.com/hpungsan/dinos/internal/errors"
	"github.com/hpungsan/dinos/internal/logging"
	"github.com/hpungsan/dinos/internal/ops"
	"github.com/hpungsan/dinos/internal/render"
	"github.com/hpungsan/dinos/internal/web"
)

// maxStdinBytes caps record input read from stdin.
const maxStdinBytes = 16 << 20

// newCLIApp creates the CLI application with all commands.
func newCLIApp(cfg *config.Config, logger *slog.Logger) *cli.App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.Discard()
	}

	app := &cli.App{
		Name:    "dinos",
		Usage:   "Dinosaur record toolkit",
		Version: Version,
		Commands: []*cli.Command{
			makeCmd(),
			applyCmd(cfg, logger),
			checkCmd(),
			compareCmd(cfg),
			partitionCmd(cfg),
			sampleCmd(cfg),
			opsCmd(),
			renderCmd(cfg),
			exportCmd(cfg, logger),
			importCmd(cfg),
			serveCmd(cfg, logger),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// recordFlags are shared by commands that take a single record on the command line.
func recordFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "species", Aliases: []string{"s"}, Required: true, Usage: "Species name"},
		&cli.StringFlag{Name: "period", Aliases: []string{"p"}, Required: true, Usage: "Triassic|Jurassic|Cretaceous"},
		&cli.BoolFlag{Name: "carnivore", Aliases: []string{"c"}, Usage: "Carnivore (default herbivore)"},
		&cli.BoolFlag{Name: "extinct", Aliases: []string{"x"}, Usage: "Extinct (default living)"},
	}
}

func recordFromFlags(c *cli.Context) (dino.Dino, error) {
	input := ops.MakeInput{
		Species:   c.String("species"),
		Period:    c.String("period"),
		Carnivore: c.Bool("carnivore"),
	}
	if c.IsSet("extinct") {
		extinct := c.Bool("extinct")
		input.Extinct = &extinct
	}
	return ops.Make(input)
}

// pathFlag selects an input file; without it records come from piped stdin,
// then from the sample collection.
var pathFlag = &cli.StringFlag{Name: "path", Usage: "Read records from a .jsonl or .json file"}

func formatFlag(cfg *config.Config) *cli.StringFlag {
	return &cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: cfg.DefaultFormat, Usage: "Output format: json|jsonl|markdown|html"}
}

// makeCmd creates the make command.
func makeCmd() *cli.Command {
	return &cli.Command{
		Name:  "make",
		Usage: "Build one record",
		Flags: recordFlags(),
		Action: func(c *cli.Context) error {
			d, err := recordFromFlags(c)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(d)
		},
	}
}

// applyCmd creates the apply command.
func applyCmd(cfg *config.Config, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "apply",
		Usage: "Run records through a pipeline of operations (see 'dinos ops')",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "op", Aliases: []string{"o"}, Usage: "Operation name, repeatable and applied in order"},
			formatFlag(cfg),
			pathFlag,
		},
		Action: func(c *cli.Context) error {
			format, err := parseFormat(c.String("format"))
			if err != nil {
				return outputError(err)
			}

			records, err := loadRecords(cfg, c.String("path"))
			if err != nil {
				return outputError(err)
			}

			pipeline := c.StringSlice("op")
			if !c.IsSet("op") {
				pipeline = cfg.DefaultPipeline
			}

			output, err := ops.Run(c.Context, cfg, ops.RunInput{
				Records:  records,
				Pipeline: pipeline,
			})
			if err != nil {
				return outputError(err)
			}
			logger.Debug("pipeline applied", "pipeline", pipeline, "in", output.InputCount, "out", output.Count)

			if format == render.FormatJSON {
				return outputJSON(output)
			}
			return outputRecords(format, output.Records)
		},
	}
}

// checkCmd creates the check command.
func checkCmd() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Evaluate every predicate for one record",
		Flags: recordFlags(),
		Action: func(c *cli.Context) error {
			d, err := recordFromFlags(c)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(ops.Check(d))
		},
	}
}

// compareCmd creates the compare command.
func compareCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "compare",
		Usage: "Evaluate every ordering for exactly two records (stdin or --path)",
		Flags: []cli.Flag{pathFlag},
		Action: func(c *cli.Context) error {
			records, err := loadRecords(cfg, c.String("path"))
			if err != nil {
				return outputError(err)
			}
			if len(records) != 2 {
				return outputError(errors.NewInvalidRequest(
					fmt.Sprintf("compare needs exactly 2 records, got %d", len(records))))
			}
			return outputJSON(ops.Compare(records[0], records[1]))
		},
	}
}

// partitionCmd creates the partition command.
func partitionCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "partition",
		Usage: "Split records into two groups",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "by", Aliases: []string{"b"}, Value: "diet", Usage: "Split on: diet|status"},
			pathFlag,
		},
		Action: func(c *cli.Context) error {
			records, err := loadRecords(cfg, c.String("path"))
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Partition(c.Context, cfg, ops.PartitionInput{
				Records: records,
				By:      ops.PartitionBy(c.String("by")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// sampleCmd creates the sample command.
func sampleCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "sample",
		Usage: "Print the sample collection",
		Flags: []cli.Flag{formatFlag(cfg)},
		Action: func(c *cli.Context) error {
			format, err := parseFormat(c.String("format"))
			if err != nil {
				return outputError(err)
			}
			return outputRecords(format, dino.Sample())
		},
	}
}

// opsCmd creates the ops command.
func opsCmd() *cli.Command {
	return &cli.Command{
		Name:  "ops",
		Usage: "List the operations usable with 'dinos apply --op'",
		Action: func(c *cli.Context) error {
			return outputJSON(map[string]any{"operations": ops.Operations()})
		},
	}
}

// renderCmd creates the render command.
func renderCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "Render records as a markdown or HTML table",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "markdown", Usage: "markdown|html"},
			pathFlag,
		},
		Action: func(c *cli.Context) error {
			format, err := parseFormat(c.String("format"))
			if err != nil {
				return outputError(err)
			}
			if format != render.FormatMarkdown && format != render.FormatHTML {
				return outputError(errors.NewInvalidRequest("format must be one of: markdown, html"))
			}
			records, err := loadRecords(cfg, c.String("path"))
			if err != nil {
				return outputError(err)
			}
			return outputRecords(format, records)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(cfg *config.Config, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write records (stdin or sample) to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.dinos/exports/<name>-<timestamp>.jsonl)"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Label for the default file name"},
		},
		Action: func(c *cli.Context) error {
			records, err := loadRecords(cfg, "")
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Export(c.Context, cfg, ops.ExportInput{
				Path:    c.String("path"),
				Name:    c.String("name"),
				Records: records,
			})
			if err != nil {
				return outputError(err)
			}
			logger.Info("export written", "path", output.Path, "count", output.Count)
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Read records from a JSONL export or JSON array file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Invalid record handling: error|skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(cfg, ops.ImportInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(cfg *config.Config, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI and JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 0 || port > 65535 {
				return outputError(errors.NewInvalidRequest("port must be between 0 and 65535"))
			}
			srv, err := web.NewServer(cfg, logger, Version, c.String("bind"), port)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv, logger)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as indented JSON.
func outputJSON(v any) error {
	return codec.EncodeJSON(os.Stdout, v)
}

// outputRecords writes records to stdout in the given format.
func outputRecords(format render.Format, records []dino.Dino) error {
	switch format {
	case render.FormatJSONL:
		return codec.WriteRecordsJSONL(os.Stdout, records)
	case render.FormatMarkdown:
		_, err := io.WriteString(os.Stdout, render.Markdown(records))
		return err
	case render.FormatHTML:
		html, err := render.HTML(records)
		if err != nil {
			return outputError(errors.NewInternal(err))
		}
		_, err = io.WriteString(os.Stdout, html)
		return err
	default:
		return outputJSON(records)
	}
}

// outputError formats error for CLI.
func outputError(err error) error {
	var dErr *errors.DinoError
	if stderrors.As(err, &dErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", dErr.Code, dErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

func parseFormat(s string) (render.Format, error) {
	f, err := render.ParseFormat(s)
	if err != nil {
		return "", errors.NewInvalidRequest(err.Error())
	}
	return f, nil
}

// loadRecords reads records from path (through the import path checks),
// else from piped stdin, else returns the sample collection.
func loadRecords(cfg *config.Config, path string) ([]dino.Dino, error) {
	if path != "" {
		output, err := ops.Import(cfg, ops.ImportInput{Path: path, Mode: ops.ImportModeError})
		if err != nil {
			return nil, err
		}
		if len(output.Errors) > 0 {
			return nil, lineErrorsToError(output.Errors)
		}
		return output.Records, nil
	}

	if !stdinHasData() {
		return dino.Sample(), nil
	}

	data, err := readStdin(maxStdinBytes)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	records, lineErrs, err := codec.Decode(strings.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(lineErrs) > 0 {
		return nil, lineErrorsToError(lineErrs)
	}
	return records, nil
}

// lineErrorsToError reports the first invalid record and the total count.
func lineErrorsToError(lineErrs []codec.LineError) error {
	first := lineErrs[0]
	msg := fmt.Sprintf("line %d: %s", first.Line, first.Message)
	if len(lineErrs) > 1 {
		msg += fmt.Sprintf(" (and %d more invalid records)", len(lineErrs)-1)
	}
	dErr := errors.NewInvalidRequest(msg)
	dErr.Details = map[string]any{"errors": lineErrs}
	return dErr
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads at most limit bytes from stdin.
func readStdin(limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("stdin exceeds %d bytes", limit)
	}
	return strings.TrimSpace(string(data)), nil
}
