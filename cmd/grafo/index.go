package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Manage property indexes",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create an index on a label property",
				ArgsUsage: "<label> <property>",
				Flags:     connectionFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runIndex(ctx, cmd, true)
				},
			},
			{
				Name:      "drop",
				Usage:     "Drop an index on a label property",
				ArgsUsage: "<label> <property>",
				Flags:     connectionFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runIndex(ctx, cmd, false)
				},
			},
		},
	}
}

func runIndex(ctx context.Context, cmd *cli.Command, create bool) error {
	args := cmd.Args().Slice()
	if len(args) != 2 {
		return cli.Exit("index: label and property arguments are required", 2)
	}

	graph, db, err := openGraph(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if create {
		return graph.CreateIndex(ctx, args[0], args[1])
	}

	return graph.DropIndex(ctx, args[0], args[1])
}
