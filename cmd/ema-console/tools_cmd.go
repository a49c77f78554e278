package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/koscakluka/ema-realtime/core/tools"
)

func toolsCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools advertised to the realtime runtime",
		RunE: func(cmd *cobra.Command, args []string) error {
			definitions := tools.Catalogue()
			if jsonOutput {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(definitions)
			}
			for _, definition := range definitions {
				fmt.Printf("%-20s %s\n", definition.Name, definition.Description)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the full definitions as JSON")
	return cmd
}
