package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/argus-ci/argus/internal/analysis"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the available analysis kinds",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Available analysis kinds:")
		fmt.Println()
		for _, k := range analysis.AllKinds {
			comprehensive := ""
			for _, c := range analysis.ComprehensiveKinds {
				if c == k {
					comprehensive = "  (comprehensive)"
					break
				}
			}
			fmt.Printf("  %-14s %s %s%s\n", k, k.Emoji(), k.Title(), comprehensive)
		}
		fmt.Println()
		fmt.Println("Run a single kind with 'argus analyze <kind>', or the whole")
		fmt.Println("comprehensive set with 'argus all'.")
	},
}
