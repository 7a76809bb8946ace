package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
)

func dropCommand() *cli.Command {
	return &cli.Command{
		Name:  "drop",
		Usage: "Delete the whole graph",
		Flags: append(connectionFlags(),
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "skip the confirmation prompt",
			},
		),
		Action: runDrop,
	}
}

func runDrop(ctx context.Context, cmd *cli.Command) error {
	graph, db, err := openGraph(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if !cmd.Bool("force") {
		fmt.Fprintf(os.Stdout, "Drop graph %q? [y/N] ", graph.Name())

		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return err
		}
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			return cli.Exit("aborted", 1)
		}
	}

	return graph.Drop(ctx)
}
