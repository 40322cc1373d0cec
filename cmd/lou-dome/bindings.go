package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chase3718/lou-dome/internal/binding"
)

var bindingsCmd = &cobra.Command{
	Use:   "bindings",
	Short: "Inspect the profile's binding rules",
}

var bindingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every binding rule as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProfile()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for i, c := range p.BindingConfigs() {
			data, err := yaml.Marshal(binding.Document{Config: c})
			if err != nil {
				return fmt.Errorf("binding %d: %w", i, err)
			}
			fmt.Fprintf(out, "# %d: %s\n%s", i, c.Name(), data)
		}
		return nil
	},
}

var bindingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every binding rule attaches to the show",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// loadProfile validates, which instantiates every binding.
		p, err := loadProfile()
		if err != nil {
			return err
		}
		cfg, err := p.NewShow()
		if err != nil {
			return err
		}
		bindings, err := binding.Instantiate(cfg, p.BindingConfigs())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d rules, %d bindings\n", len(p.Bindings), len(bindings))
		return nil
	},
}

func init() {
	bindingsCmd.AddCommand(bindingsListCmd, bindingsValidateCmd)
}
