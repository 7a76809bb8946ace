package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/rlch/grafo"
	"github.com/urfave/cli/v3"
)

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Aliases:   []string{"q"},
		Usage:     "Run a Cypher query",
		ArgsUsage: "<cypher>",
		Flags: append(connectionFlags(),
			&cli.BoolFlag{
				Name:  "read-only",
				Usage: "route through the read-only execution path",
			},
			&cli.IntFlag{
				Name:  "timeout",
				Usage: "server-side query timeout in milliseconds",
			},
			&cli.StringSliceFlag{
				Name:  "param",
				Usage: "query parameter as key=value (repeatable)",
			},
		),
		Action: runQuery,
	}
}

func runQuery(ctx context.Context, cmd *cli.Command) error {
	cypher := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if cypher == "" {
		return cli.Exit("query: a Cypher query argument is required", 2)
	}

	params := map[string]any{}
	for _, pair := range cmd.StringSlice("param") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return cli.Exit(fmt.Sprintf("query: malformed --param %q, want key=value", pair), 2)
		}
		params[key] = value
	}

	graph, db, err := openGraph(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	result, err := graph.Query(ctx, cypher, params, grafo.ExecOptions{
		ReadOnly:  cmd.Bool("read-only"),
		TimeoutMS: int(cmd.Int("timeout")),
	})
	if err != nil {
		return err
	}

	printResult(result)

	return nil
}

func printResult(result *grafo.Result) {
	if len(result.Columns) > 0 {
		table := tablewriter.NewTable(os.Stdout)
		table.Header(result.Columns)
		for _, row := range result.Rows {
			cells := make([]string, len(row))
			for i, cell := range row {
				cells[i] = formatCell(cell)
			}
			_ = table.Append(cells)
		}
		_ = table.Render()
	}

	printStatistics(result.Statistics, len(result.Rows))
}

func formatCell(v any) string {
	if v == nil {
		return "null"
	}

	return fmt.Sprintf("%v", v)
}

func printStatistics(stats grafo.Statistics, rows int) {
	dim := color.New(color.Faint)
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		dim.DisableColor()
	}

	parts := []string{fmt.Sprintf("%d rows", rows)}
	for _, counter := range []struct {
		name  string
		count int
	}{
		{"nodes created", stats.NodesCreated},
		{"nodes deleted", stats.NodesDeleted},
		{"relationships created", stats.RelationshipsCreated},
		{"relationships deleted", stats.RelationshipsDeleted},
		{"properties set", stats.PropertiesSet},
		{"labels added", stats.LabelsAdded},
	} {
		if counter.count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counter.count, counter.name))
		}
	}
	if stats.ExecutionTimeMS > 0 {
		parts = append(parts, fmt.Sprintf("%.3f ms", stats.ExecutionTimeMS))
	}

	dim.Fprintln(os.Stdout, strings.Join(parts, ", "))
}
