package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/kober-systems/guidelines/internal/fileproc"
	"github.com/kober-systems/guidelines/internal/output"
	"github.com/kober-systems/guidelines/internal/progress"
	"github.com/kober-systems/guidelines/internal/scanner"
	"github.com/kober-systems/guidelines/pkg/analyzer"
	"github.com/kober-systems/guidelines/pkg/analyzer/graph"
	"github.com/kober-systems/guidelines/pkg/analyzer/rules"
	"github.com/kober-systems/guidelines/pkg/ast"
	"github.com/kober-systems/guidelines/pkg/config"
	"github.com/kober-systems/guidelines/pkg/fix"
	"github.com/kober-systems/guidelines/pkg/parser"
	"github.com/kober-systems/guidelines/pkg/semantic"
	"github.com/kober-systems/guidelines/pkg/source"
)

// loadConfig resolves the --config flag or searches standard locations.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
		return cfg, nil
	}
	return config.LoadOrDefault()
}

// collectFiles scans all requested paths for source files.
func collectFiles(cfg *config.Config, paths []string) ([]string, error) {
	scan := scanner.New(cfg)

	var files []string
	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %w", path, err)
		}
		found, err := scan.Scan(absPath)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", path, err)
		}
		files = append(files, found...)
	}
	return files, nil
}

// liftAll parses and lifts every file in parallel, one parser per
// file. Per-file failures are reported to stderr and skip only the
// affected file.
func liftAll(ctx context.Context, files []string) []*ast.Node {
	trees, errs := fileproc.MapFiles(ctx, files, func(p *parser.Parser, path string) (*ast.Node, error) {
		lifter := semantic.NewWithParser(p)
		return lifter.LiftFile(path)
	})
	if errs != nil {
		for _, e := range errs.Errors {
			fmt.Fprintf(os.Stderr, "skipped %s\n", e.Error())
		}
	}
	return trees
}

// runCheck lifts, indexes and rule-checks the inputs and renders
// terminal diagnostics. Diagnostics never affect the exit code.
func runCheck(c *cli.Context, paths []string, interactive bool) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	files, err := collectFiles(cfg, paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return noSourcesFound()
	}

	tracker := progress.NewTracker("Analyzing sources...", 0)
	ctx := analyzer.WithTracker(context.Background(), tracker)
	trees := liftAll(ctx, files)
	tracker.FinishSuccess()

	idx := rules.BuildIndex(trees)
	diags := rules.Check(trees, idx)

	contents := make(source.FileSet, len(trees))
	for _, tree := range trees {
		if content, ok := tree.FileContent(); ok {
			contents[tree.Name] = content
		}
	}

	renderer := output.NewDiagnosticRenderer(os.Stdout, cfg.Output.Color, interactive, os.Stdin)
	if err := renderer.Render(diags, contents); err != nil {
		return err
	}
	if len(diags) == 0 {
		color.Green("No guideline violations found")
	}
	return nil
}

// runGraph builds the annotated graph and serializes it in the
// requested format.
func runGraph(c *cli.Context, paths []string, format string, metrics, prune bool) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	files, err := collectFiles(cfg, paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return noSourcesFound()
	}

	tracker := progress.NewTracker("Building graph...", 0)
	ctx := analyzer.WithTracker(context.Background(), tracker)
	trees := liftAll(ctx, files)
	tracker.FinishSuccess()

	idx := rules.BuildIndex(trees)
	rules.FilterReferences(trees, idx)
	rules.Annotate(trees, idx)

	g := graph.Build(trees)
	if prune && cfg.Graph.Prune {
		g = graph.RemoveVisualNoise(g)
	}

	if metrics {
		printMetrics(graph.CalculateMetrics(g))
	}

	var rendered string
	switch output.ParseFormat(format) {
	case output.FormatDOT:
		rendered = g.ToDOT()
	case output.FormatGraphML:
		rendered = g.ToGraphML()
	case output.FormatSVG:
		rendered = g.ToSVG()
	default:
		return fmt.Errorf("format %q cannot render a graph", format)
	}

	return printTo(c.String("output"), rendered)
}

func printMetrics(m *graph.Metrics) {
	fmt.Fprintf(os.Stderr, "Nodes: %d, Edges: %d, Avg Degree: %.2f, Density: %.4f\n",
		m.TotalNodes, m.TotalEdges, m.AvgDegree, m.Density)

	for i, nm := range m.Ranked {
		if i >= 5 {
			break
		}
		fmt.Fprintf(os.Stderr, "  %s: %.4f (in: %d, out: %d)\n",
			nm.Name, nm.PageRank, nm.InDegree, nm.OutDegree)
	}

	if len(m.Cycles) > 0 {
		fmt.Fprintln(os.Stderr, color.RedString("Inheritance cycles detected:"))
		for _, cycle := range m.Cycles {
			fmt.Fprintf(os.Stderr, "  %v\n", cycle)
		}
	}
}

// runFix applies CreateAbstractClass fixes for classes flagged by the
// derive-from-interface rule.
func runFix(c *cli.Context, paths []string, className string, diff, write bool) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	files, err := collectFiles(cfg, paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return noSourcesFound()
	}

	trees := liftAll(context.Background(), files)
	idx := rules.BuildIndex(trees)
	diags := rules.Check(trees, idx)

	var fixes []fix.Fix
	for _, d := range diags {
		if d.Kind != ast.DeriveFromAbstractInterface {
			continue
		}
		if className != "" && d.Class != className {
			continue
		}
		fixes = append(fixes, fix.Fix{
			Instruction: fix.CreateAbstractClass{ClassName: d.Class},
			Cause:       d,
		})
	}
	if len(fixes) == 0 {
		color.Green("Nothing to fix")
		return nil
	}

	before, err := source.LoadFileSet(files)
	if err != nil {
		return err
	}
	after, err := fix.Apply(fixes, before)
	if err != nil {
		return err
	}

	if diff {
		if err := printFixDiff(before, after); err != nil {
			return err
		}
	} else {
		for _, path := range after.Paths() {
			if before[path] != after[path] {
				fmt.Println(path)
			}
		}
	}

	if write {
		changed := make(source.FileSet)
		for _, path := range after.Paths() {
			if before[path] != after[path] {
				changed[path] = after[path]
			}
		}
		return source.WriteFileSet(changed)
	}
	return nil
}
