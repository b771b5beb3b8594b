package cron

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// StartCron schedules every registered job and starts the scheduler.
// schedules overrides a job's registered spec by name. A run still in
// progress makes the next tick of the same job a no-op.
func StartCron(schedules map[string]string) (*cron.Cron, error) {
	logger := cron.VerbosePrintfLogger(log.Default())
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	for name, j := range Jobs() {
		spec := j.Schedule
		if s, ok := schedules[name]; ok && s != "" {
			spec = s
		}
		run := j.Run
		if _, err := c.AddFunc(spec, func() { run() }); err != nil {
			return nil, fmt.Errorf("register job %s (%q): %w", name, spec, err)
		}
		log.Printf("[cron] %s scheduled %s", name, spec)
	}
	c.Start()
	return c, nil
}
