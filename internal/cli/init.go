package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vigil-app/vigil/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the vigil config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(); err != nil {
			return err
		}
		path, _ := config.ConfigPath()
		fmt.Printf("Saved %s\n", path)
		fmt.Println("Set GEMINI_API_KEY (or OPENAI_API_KEY) and SERPAPI_API_KEY in the environment.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
