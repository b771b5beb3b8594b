package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"plmsync.GO/config"
	"plmsync.GO/cron"
	"plmsync.GO/cron/jobs"
)

var jobName string

var cronStartCmd = &cobra.Command{
	Use:   "cron:start",
	Short: "Start the cron scheduler or run a single job by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		jobs.Bind(db)

		if jobName != "" {
			name := strings.ToLower(jobName)
			j, ok := cron.Jobs()[name]
			if !ok {
				return fmt.Errorf("unknown job: %s (available: %s)", jobName, strings.Join(cron.Names(), ", "))
			}
			cmd.Printf("Running cron job: %s\n", name)
			j.Run(args...)
			return nil
		}

		cmd.Println("Starting cron scheduler...")
		c, err := cron.StartCron(jobs.Schedules(config.LoadAppConfig()))
		if err != nil {
			return err
		}
		cmd.Println("Cron scheduler started. Press Ctrl+C to exit.")
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		<-c.Stop().Done()
		return nil
	},
}

func init() {
	cronStartCmd.Flags().StringVarP(&jobName, "job", "j", "", "Run a single cron job by name and exit")
	rootCmd.AddCommand(cronStartCmd)
}
