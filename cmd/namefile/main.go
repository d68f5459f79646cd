package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/starford/namefile/internal"
	"github.com/starford/namefile/internal/catalog"
	"github.com/starford/namefile/internal/storage"
	pkgconfig "github.com/starford/namefile/pkg/config"
	"github.com/starford/namefile/pkg/namefile"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg, pkgconfig.AllowMissing()); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func encode(ctx context.Context, cmd *cli.Command) error {
	res, err := catalog.Encode(catalog.EncodeRequest{
		Stem:    cmd.String("stem"),
		Suffix:  cmd.String("suffix"),
		Tags:    cmd.StringSlice("tag"),
		Date:    cmd.String("date"),
		Today:   cmd.Bool("today"),
		Version: cmd.String("version"),
	}, nil)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, res.Name)
	return err
}

type decodeResult struct {
	Name   string           `json:"name" yaml:"name"`
	Record *namefile.Fields `json:"record,omitempty" yaml:"record,omitempty"`
	Kind   string           `json:"kind,omitempty" yaml:"kind,omitempty"`
	Error  string           `json:"error,omitempty" yaml:"error,omitempty"`
}

func decode(ctx context.Context, cmd *cli.Command) error {
	names := cmd.Args().Slice()
	if len(names) == 0 {
		return fmt.Errorf("decode: at least one name is required")
	}

	results := make([]decodeResult, 0, len(names))
	failed := 0
	for _, name := range names {
		rec, err := namefile.Decode(name)
		if err != nil {
			failed++
			results = append(results, decodeResult{Name: name, Kind: namefile.ErrorKind(err), Error: err.Error()})
			continue
		}
		f := rec.Fields()
		results = append(results, decodeResult{Name: name, Record: &f})
	}

	if err := writeOutput(cmd.Root().Writer, cmd.String("output"), results); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("decode: %d of %d names could not be decoded", failed, len(names))
	}
	return nil
}

func scan(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.Args().First()
	if dir == "" {
		dir = "."
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	report, err := catalog.Scan(ctx, store, ".")
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	return writeOutput(cmd.Root().Writer, cmd.String("output"), report)
}

func writeOutput(w io.Writer, format string, v any) error {
	if err := validation.Validate(format, validation.In("json", "yaml")); err != nil {
		return fmt.Errorf("output %q: %w", format, err)
	}
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output format: json or yaml",
		Value:   "json",
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("NAMEFILE_CONFIG_FILE"),
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "namefile",
		Usage:   "Encode records into structured file names, decode them back, and catalog a directory of such files",
		Commands: []*cli.Command{
			{
				Name:   "encode",
				Usage:  "Print the canonical name for a record",
				Action: encode,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "stem", Usage: "Base name", Required: true},
					&cli.StringFlag{Name: "suffix", Usage: "Extension without the leading dot"},
					&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Tag (repeatable)"},
					&cli.StringFlag{Name: "date", Usage: "Date as YYYY-MM-DD"},
					&cli.BoolFlag{Name: "today", Usage: "Stamp today's date"},
					&cli.StringFlag{Name: "version", Usage: "Version such as 1.2.0 or 1.0rc1"},
				},
			},
			{
				Name:      "decode",
				Usage:     "Decode file names into their fields",
				ArgsUsage: "NAME...",
				Action:    decode,
				Flags:     []cli.Flag{outputFlag()},
			},
			{
				Name:      "scan",
				Usage:     "Decode every file name under a directory without indexing it",
				ArgsUsage: "[DIR]",
				Action:    scan,
				Flags:     []cli.Flag{outputFlag()},
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP catalog service with the file watcher",
				Action: serve,
				Flags:  []cli.Flag{configFlag()},
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdio",
				Action: serveMCP,
				Flags:  []cli.Flag{configFlag()},
			},
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
