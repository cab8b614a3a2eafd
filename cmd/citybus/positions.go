package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var positionsFlags struct {
	clientConfig
}

var positionsCmd = &cobra.Command{
	Use:   "positions <city> <route>...",
	Short: "Print live bus positions",
	Long:  `Print the current positions of buses on the given routes, one JSON record per line.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPositions,
}

func init() {
	rootCmd.AddCommand(positionsCmd)

	addClientFlags(positionsCmd, &positionsFlags.clientConfig)
}

func runPositions(cmd *cobra.Command, args []string) error {
	routes, err := parseRoutes(args[1:])
	if err != nil {
		return err
	}

	c, _, err := positionsFlags.newClient()
	if err != nil {
		return err
	}

	positions, err := c.Positions(context.Background(), args[0], routes)
	if err != nil {
		return err
	}

	for _, p := range positions {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(p)); err != nil {
			return err
		}
	}
	return nil
}

func parseRoutes(args []string) ([]int, error) {
	routes := make([]int, 0, len(args))
	for _, a := range args {
		r, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid route %q: must be an integer", a)
		}
		routes = append(routes, r)
	}
	return routes, nil
}
