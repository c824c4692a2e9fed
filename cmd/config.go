package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/kamal-hamza/cloak-cli/pkg/ui"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit the cloak configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := appVault.ConfigPath

		// Write the defaults so there is something to edit
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := appConfig.Save(path); err != nil {
				return fmt.Errorf("config file not found at %s: %w", path, err)
			}
		}

		fmt.Println(ui.FormatInfo("Opening config: " + path))

		c := exec.Command(GetPreferredEditor(), path)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	},
}
