package cli

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (c *CLI) newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the configuration after applying the config file and UWASSERT_* variables",
		Example: `  uwassert config show
  UWASSERT_RESOURCE_DIR=/opt/uwassert uwassert config show -c uwassert.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return errors.Wrap(err, "encode config")
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	configCmd.AddCommand(showCmd)
	return configCmd
}
