// Package cli wires the cobra command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vigil-app/vigil/internal/config"
	"github.com/vigil-app/vigil/internal/oracle"
	"github.com/vigil-app/vigil/internal/pipeline"
	"github.com/vigil-app/vigil/internal/version"
)

var (
	providerFlag string
	modelFlag    string
	numFrames    int
	jsonOutput   bool
)

var rootCmd = &cobra.Command{
	Use:     "vigil [url-or-file]",
	Short:   "Acquire, normalize, and risk-assess online content for misinformation signals",
	Version: version.Version,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runAnalyze(args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "oracle provider (gemini, openai)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "oracle model override")
	rootCmd.Flags().IntVar(&numFrames, "frames", 0, "number of keyframes to sample from video")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the full report as JSON")

	// Errors are printed once, by runAnalyze's caller
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() *config.Config {
	cfg := config.LoadOrDefault()
	if providerFlag != "" {
		cfg.Oracle.Provider = providerFlag
	}
	if modelFlag != "" {
		cfg.Oracle.Model = modelFlag
	}
	if numFrames > 0 {
		cfg.NumFrames = numFrames
	}
	return cfg
}

func runAnalyze(target string) error {
	cfg := loadConfig()

	if !config.Exists() {
		fmt.Fprintln(os.Stderr, color.YellowString("No config file found. Run 'vigil init' to create one."))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipe, err := pipeline.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer pipe.Close()

	var res *pipeline.Result
	if _, statErr := os.Stat(target); statErr == nil {
		res, err = pipe.AnalyzeFile(ctx, target)
	} else {
		res, err = pipe.AnalyzeURL(ctx, target)
	}
	if err != nil {
		// An oracle failure still leaves a session worth pointing at
		var fe *oracle.FailureError
		if errors.As(err, &fe) && res != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Oracle failed:"), fe)
			fmt.Fprintf(os.Stderr, "Partial session saved to %s\n", res.SessionDir)
		}
		return err
	}

	printResult(res)
	return nil
}

func printResult(res *pipeline.Result) {
	if jsonOutput {
		fmt.Println(res.Report.Raw)
		return
	}

	fmt.Println()
	if res.Title != "" {
		fmt.Printf("%s %s\n", color.New(color.Bold).Sprint("Title:"), res.Title)
	}
	fmt.Printf("%s %s\n", color.New(color.Bold).Sprint("Channel:"), res.Channel)
	fmt.Printf("%s %s\n", color.New(color.Bold).Sprint("Risk:"), riskString(res.Report.RiskLevel))
	if res.Report.Summary != "" {
		fmt.Printf("\n%s\n", res.Report.Summary)
	}

	if len(res.Report.Details) > 0 {
		keys := make([]string, 0, len(res.Report.Details))
		for k := range res.Report.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Println()
		for _, k := range keys {
			fmt.Printf("%s %v\n", color.CyanString(k+":"), res.Report.Details[k])
		}
	}

	fmt.Printf("\nSession: %s\n", res.SessionDir)
}

func riskString(level oracle.RiskLevel) string {
	switch level {
	case oracle.RiskVerified:
		return color.GreenString(string(level))
	case oracle.RiskLow:
		return color.GreenString(string(level))
	case oracle.RiskMedium:
		return color.YellowString(string(level))
	case oracle.RiskHigh:
		return color.RedString(string(level))
	default:
		return color.New(color.FgRed, color.Bold).Sprint(string(level))
	}
}
