package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var autoSyncCmd = &cobra.Command{
	Use:       "settings:autosync on|off",
	Short:     "Turn scheduled syncs on or off",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		enabled := args[0] == "on"
		if err := settingsFor(db).SetAutoSync(cmd.Context(), enabled); err != nil {
			return err
		}
		cmd.Printf("Auto sync %s\n", map[bool]string{true: "enabled", false: "disabled"}[enabled])
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "db:migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := openDB(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(autoSyncCmd, migrateCmd)
}
