package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"plmsync.GO/service/rules"
)

var (
	ruleValue   string
	ruleEnable  bool
	ruleDisable bool
)

var rulesSeedCmd = &cobra.Command{
	Use:   "rules:seed",
	Short: "Insert the default sync rules that are missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		n, err := rules.NewProvider(db).Seed()
		if err != nil {
			return err
		}
		cmd.Printf("Seeded %d rules (%d already present)\n", n, len(rules.Defaults)-n)
		return nil
	},
}

var rulesListCmd = &cobra.Command{
	Use:   "rules:list",
	Short: "List sync rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		all, err := rules.NewProvider(db).List()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tENABLED\tVALUE\tLABEL")
		for _, r := range all {
			fmt.Fprintf(w, "%s\t%v\t%s\t%s\n", r.RuleKey, r.IsEnabled, r.RuleValue, r.RuleName)
		}
		return w.Flush()
	},
}

var rulesSetCmd = &cobra.Command{
	Use:   "rules:set <key>",
	Short: "Change a rule value or enable/disable it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ruleEnable && ruleDisable {
			return fmt.Errorf("--enable and --disable are mutually exclusive")
		}
		var value *string
		if cmd.Flags().Changed("value") {
			value = &ruleValue
		}
		var enabled *bool
		switch {
		case ruleEnable:
			on := true
			enabled = &on
		case ruleDisable:
			off := false
			enabled = &off
		}
		db, err := openDB()
		if err != nil {
			return err
		}
		r, err := rules.NewProvider(db).Update(args[0], value, enabled)
		if err != nil {
			return fmt.Errorf("update rule %s: %w", args[0], err)
		}
		cmd.Printf("%s = %q (enabled: %v)\n", r.RuleKey, r.RuleValue, r.IsEnabled)
		return nil
	},
}

func init() {
	rulesSetCmd.Flags().StringVar(&ruleValue, "value", "", "New rule value")
	rulesSetCmd.Flags().BoolVar(&ruleEnable, "enable", false, "Enable the rule")
	rulesSetCmd.Flags().BoolVar(&ruleDisable, "disable", false, "Disable the rule (the hard default applies)")
	rootCmd.AddCommand(rulesSeedCmd, rulesListCmd, rulesSetCmd)
}
