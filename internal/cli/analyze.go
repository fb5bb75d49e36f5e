package cli

import (
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url-or-file>",
	Short: "Analyze a URL or local file for misinformation signals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(args[0])
	},
}

func init() {
	analyzeCmd.Flags().IntVar(&numFrames, "frames", 0, "number of keyframes to sample from video")
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the full report as JSON")
	rootCmd.AddCommand(analyzeCmd)
}
