package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	if err := run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	return newApp().Run(args)
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "guidelines",
		Usage:   "Architecture guideline analyzer for C++ codebases",
		Version: version,
		Description: `Guidelines checks C++ sources against an interface-first object
oriented style: concrete classes derive from a single abstract interface,
interfaces expose only public pure-virtual methods, attributes stay
private and global mutable state is forbidden. Violations are reported
as source-located diagnostics; the code structure can be rendered as a
dependency graph (SVG, Graphviz DOT or GraphML).`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Value:   ".",
				Usage:   "File or directory to analyze",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "terminal",
				Usage:   "Output format: terminal, svg, dot, graphml",
			},
			&cli.BoolFlag{
				Name:  "interactive",
				Usage: "Pause between diagnostics (terminal format only)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"GUIDELINES_CONFIG"},
			},
		},
		Action: runDefaultCmd,
		Commands: []*cli.Command{
			checkCmd(),
			graphCmd(),
			fixCmd(),
		},
	}
}

// runDefaultCmd implements the plain `guidelines --input ... --format ...`
// surface: terminal diagnostics by default, a graph rendering when a
// graph format is selected.
func runDefaultCmd(c *cli.Context) error {
	format := c.String("format")
	paths := []string{c.String("input")}
	if c.Args().Len() > 0 {
		paths = c.Args().Slice()
	}

	if isGraphFormat(format) {
		return runGraph(c, paths, format, false, true)
	}
	return runCheck(c, paths, c.Bool("interactive"))
}

func isGraphFormat(format string) bool {
	switch format {
	case "svg", "dot", "graphml":
		return true
	}
	return false
}

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Aliases:   []string{"lint"},
		Usage:     "Report guideline violations as terminal diagnostics",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "interactive",
				Usage: "Pause between diagnostics",
			},
		},
		Action: func(c *cli.Context) error {
			return runCheck(c, getPaths(c), c.Bool("interactive"))
		},
	}
}

func graphCmd() *cli.Command {
	return &cli.Command{
		Name:      "graph",
		Aliases:   []string{"viz"},
		Usage:     "Render the code structure as a dependency graph",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "dot",
				Usage:   "Graph format: dot, graphml, svg",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Print PageRank, degree and cycle metrics to stderr",
			},
			&cli.BoolFlag{
				Name:  "no-prune",
				Usage: "Keep incidental nodes instead of pruning visual noise",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
		},
		Action: func(c *cli.Context) error {
			return runGraph(c, getPaths(c), c.String("format"), c.Bool("metrics"), !c.Bool("no-prune"))
		},
	}
}

func fixCmd() *cli.Command {
	return &cli.Command{
		Name:      "fix",
		Usage:     "Refactor non-conforming classes to derive from synthesized interfaces",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "class",
				Usage: "Only fix the named class",
			},
			&cli.BoolFlag{
				Name:  "diff",
				Usage: "Print a unified diff instead of a file listing",
			},
			&cli.BoolFlag{
				Name:  "write",
				Usage: "Write the changed files back to disk",
			},
		},
		Action: func(c *cli.Context) error {
			return runFix(c, getPaths(c), c.String("class"), c.Bool("diff"), c.Bool("write"))
		},
	}
}

// getPaths returns paths from positional args, falling back to the
// global --input flag.
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	if input := c.String("input"); input != "" {
		return []string{input}
	}
	return []string{"."}
}

func noSourcesFound() error {
	color.Yellow("No source files found")
	return nil
}

func printTo(path, content string) error {
	if path == "" {
		fmt.Println(content)
		return nil
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
