package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/coreos/pkg/capnslog"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"

	"github.com/pontaoski/letgo/ast"
	"github.com/pontaoski/letgo/check"
	"github.com/pontaoski/letgo/compiler"
	"github.com/pontaoski/letgo/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/letgo", "main")

// setupLogging applies the log level from the flag, or from the manifest
// when the flag was not given.
func setupLogging(c *cli.Context) error {
	level := c.String("log-level")
	if !c.IsSet("log-level") {
		if mod, found, err := readModule("."); err == nil && found && mod.LogLevel != "" {
			level = mod.LogLevel
		}
	}

	l, err := capnslog.ParseLevel(strings.ToUpper(level))
	if err != nil {
		return tracerr.Errorf("bad log level %q: %w", level, err)
	}
	capnslog.SetFormatter(capnslog.NewPrettyFormatter(os.Stderr, l >= capnslog.DEBUG))
	capnslog.SetGlobalLogLevel(l)
	return nil
}

// sourceArg returns the file named on the command line, or the only source
// file in the current directory.
func sourceArg(c *cli.Context) (string, error) {
	if path := c.Args().First(); path != "" {
		return path, nil
	}
	return findSource(".")
}

func optionsFor(c *cli.Context, path string, mod letModule) compiler.Options {
	return compiler.Options{
		Filename: path,
		Optimize: mod.optimize() && !c.Bool("no-optimize"),
	}
}

var noOptimize = &cli.BoolFlag{
	Name:  "no-optimize",
	Usage: "skip constant folding, inlining and dead binding removal",
}

func printTokens(tokens []types.Token) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Kind", "Text", "Line", "Column", "Depth"})
	for _, tok := range tokens {
		table.Append([]string{
			tok.Kind.String(),
			strconv.Quote(tok.Text),
			strconv.Itoa(tok.Location.From.Line),
			strconv.Itoa(tok.Location.From.Column),
			strconv.Itoa(tok.Depth),
		})
	}
	table.Render()
}

func main() {
	app := &cli.App{
		Name:  "letgo",
		Usage: "let compiler",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "NOTICE",
				Usage:   "one of CRITICAL, ERROR, WARNING, NOTICE, INFO, DEBUG, TRACE",
				EnvVars: []string{"LETGO_LOG_LEVEL"},
			},
		},
		Before: setupLogging,
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil {
				return
			}
			report(os.Stderr, err)
			os.Exit(1)
		},
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "init a directory",
				ArgsUsage: "<module name>",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return tracerr.Errorf("no module name provided")
					}
					return writeModule(".", newModule(name))
				},
			},
			{
				Name:      "build",
				Usage:     "build a file",
				ArgsUsage: "[file.let]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "output",
						Usage: "name of the linked executable",
					},
					&cli.BoolFlag{
						Name:  "emit-ir",
						Usage: "stop after writing the .ll file",
					},
					&cli.BoolFlag{
						Name:  "dump",
						Usage: "print the IR",
					},
					noOptimize,
				},
				Action: func(c *cli.Context) error {
					path, err := sourceArg(c)
					if err != nil {
						return err
					}
					mod, _, err := readModule(".")
					if err != nil {
						return err
					}
					opts := optionsFor(c, path, mod)

					b := buildOptions{
						Output:   c.String("output"),
						EmitIR:   c.Bool("emit-ir"),
						Optimize: opts.Optimize,
					}
					if c.Bool("dump") {
						b.Dump = os.Stdout
					}
					return build(path, mod, b)
				},
			},
			{
				Name:      "run",
				Usage:     "evaluate a file and print its value",
				ArgsUsage: "[file.let]",
				Flags:     []cli.Flag{noOptimize},
				Action: func(c *cli.Context) error {
					path, err := sourceArg(c)
					if err != nil {
						return err
					}
					mod, _, err := readModule(".")
					if err != nil {
						return err
					}
					opts := optionsFor(c, path, mod)
					lines, err := readSource(path)
					if err != nil {
						return err
					}
					result, err := compiler.Evaluate(lines, opts)
					if err != nil {
						return err
					}
					fmt.Println(result)
					return nil
				},
			},
			{
				Name:      "tokens",
				Usage:     "print the tokens of a file",
				ArgsUsage: "[file.let]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "raw",
						Usage: "keep whitespace, comments and line breaks",
					},
				},
				Action: func(c *cli.Context) error {
					path, err := sourceArg(c)
					if err != nil {
						return err
					}
					lines, err := readSource(path)
					if err != nil {
						return err
					}
					tokens, err := compiler.Tokens(lines, compiler.Options{Filename: path}, c.Bool("raw"))
					if err != nil {
						return err
					}
					printTokens(tokens)
					return nil
				},
			},
			{
				Name:      "ast",
				Usage:     "print the tree of a file",
				ArgsUsage: "[file.let]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "checked",
						Usage: "resolve and optimize before printing",
					},
					&cli.BoolFlag{
						Name:  "repr",
						Usage: "dump the node structure instead of source text",
					},
					noOptimize,
				},
				Action: func(c *cli.Context) error {
					path, err := sourceArg(c)
					if err != nil {
						return err
					}
					mod, _, err := readModule(".")
					if err != nil {
						return err
					}
					opts := optionsFor(c, path, mod)
					lines, err := readSource(path)
					if err != nil {
						return err
					}

					a, err := compiler.Parse(lines, opts)
					if err != nil {
						return err
					}
					if c.Bool("checked") {
						if err := check.Check(a, opts.Optimize); err != nil {
							return err
						}
					}

					if c.Bool("repr") {
						repr.Println(ast.Dump(a, a.Root))
					} else {
						fmt.Println(ast.Print(a, a.Root))
					}
					return nil
				},
			},
			{
				Name:  "repl",
				Usage: "evaluate lines interactively",
				Flags: []cli.Flag{noOptimize},
				Action: func(c *cli.Context) error {
					mod, _, err := readModule(".")
					if err != nil {
						return err
					}
					return repl(os.Stdout, optionsFor(c, "<repl>", mod))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
