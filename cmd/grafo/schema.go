package main

import (
	"context"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:   "schema",
		Usage:  "Show graph schema: labels, relationship types, property keys, indexes",
		Flags:  connectionFlags(),
		Action: runSchema,
	}
}

func runSchema(ctx context.Context, cmd *cli.Command) error {
	graph, db, err := openGraph(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	labels, err := graph.Labels(ctx)
	if err != nil {
		return err
	}

	relationshipTypes, err := graph.RelationshipTypes(ctx)
	if err != nil {
		return err
	}

	propertyKeys, err := graph.PropertyKeys(ctx)
	if err != nil {
		return err
	}

	indexes, err := graph.Indexes(ctx)
	if err != nil {
		return err
	}

	table := tablewriter.NewTable(os.Stdout)
	table.Header([]string{"Kind", "Values"})
	_ = table.Append([]string{"labels", strings.Join(labels, ", ")})
	_ = table.Append([]string{"relationship types", strings.Join(relationshipTypes, ", ")})
	_ = table.Append([]string{"property keys", strings.Join(propertyKeys, ", ")})
	for _, idx := range indexes {
		_ = table.Append([]string{"index", idx.Label + "(" + strings.Join(idx.Properties, ", ") + ")"})
	}

	return table.Render()
}
