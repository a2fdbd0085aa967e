package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var VERSION = "UNKNOWN"

func main() {
	root := &cobra.Command{
		Use:     "navd",
		Short:   "navmesh query service",
		Version: VERSION,
	}
	root.AddCommand(ServeCmd())
	root.AddCommand(PathCmd())
	root.AddCommand(TileCmd())
	err := root.Execute()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
