package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"plmsync.GO/service/erpsync"
)

var (
	syncLive   bool
	syncPrefix string
	syncDryRun bool
)

var harvestCmd = &cobra.Command{
	Use:   "sync:harvest",
	Short: "Harvest eligible PLM items into the local store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		engine, cfg, err := newEngine(ctx)
		if err != nil {
			return err
		}
		res, err := engine.Harvest(ctx, cfg.Prefix())
		if err != nil {
			return fmt.Errorf("harvest failed: %w", err)
		}
		printHarvest(cmd, res)
		return nil
	},
}

var pushCmd = &cobra.Command{
	Use:   "sync:push",
	Short: "Push local items to the ERP (dry run unless --live)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		engine, cfg, err := newEngine(ctx)
		if err != nil {
			return err
		}
		prefix := syncPrefix
		if !cmd.Flags().Changed("prefix") {
			prefix = cfg.Prefix()
		}
		res, err := engine.Push(ctx, erpsync.PushOptions{Prefix: prefix, DryRun: !syncLive})
		if res != nil {
			printSync(cmd, "Push", res)
		}
		return err
	},
}

var itemCmd = &cobra.Command{
	Use:   "sync:item <sku>",
	Short: "Sync a single item and its BOM components",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		engine, _, err := newEngine(ctx)
		if err != nil {
			return err
		}
		res, err := engine.SyncSingleItem(ctx, args[0], !syncLive)
		if res != nil {
			printSync(cmd, "Item Sync", res)
		}
		return err
	},
}

var changesCmd = &cobra.Command{
	Use:   "sync:changes",
	Short: "Sync items referenced by completed PLM changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		engine, _, err := newEngine(ctx)
		if err != nil {
			return err
		}
		res, err := engine.PollChanges(ctx, !syncLive)
		if err != nil {
			return err
		}
		printSync(cmd, "Change Poll", res)
		return nil
	},
}

var fullCmd = &cobra.Command{
	Use:   "sync:full",
	Short: "Harvest then push, live unless --dry-run",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		engine, cfg, err := newEngine(ctx)
		if err != nil {
			return err
		}
		res, err := engine.PerformFullSync(ctx, cfg, syncDryRun)
		if res != nil {
			if res.Harvest != nil {
				printHarvest(cmd, res.Harvest)
			}
			if res.Push != nil {
				printSync(cmd, "Push", res.Push)
			}
		}
		if err != nil {
			if res != nil {
				return fmt.Errorf("full sync stopped in %s phase: %w", res.Phase, err)
			}
			return err
		}
		return nil
	},
}

func printHarvest(cmd *cobra.Command, res *erpsync.HarvestResult) {
	for _, w := range res.Warnings {
		cmd.Printf("  [warn] %s\n", w)
	}
	cmd.Printf(`
=== Harvest Report ===
Run:               %s
Candidates:        %d
Harvested:         %d
Skipped lifecycle: %d
Skipped transfer:  %d
Duplicates:        %d
Invalid:           %d
Total time:        %s
======================
`, res.RunID, len(res.Listing), res.Harvested, res.SkippedLifecycle, res.SkippedTransfer,
		res.SkippedDuplicate, res.SkippedInvalid, res.Duration.Round(time.Millisecond))
}

func printSync(cmd *cobra.Command, title string, res *erpsync.SyncResult) {
	for _, d := range res.Details {
		switch d.Outcome {
		case erpsync.OutcomeFailed:
			cmd.Printf("  [fail] %s: %s\n", d.SKU, d.Error)
		case erpsync.OutcomeMocked:
			bom := 0
			if d.Payload != nil {
				bom = len(d.Payload.BillOfMaterialsProducts)
			}
			cmd.Printf("  [mock] %s (%d bom lines)\n", d.SKU, bom)
		}
		for _, w := range d.Warnings {
			cmd.Printf("  [warn] %s: %s\n", d.SKU, w)
		}
	}
	mode := map[bool]string{true: "Dry run", false: "Live"}[res.DryRun]
	cmd.Printf(`
=== %s Report ===
Run:        %s
Status:     %s
Success:    %d
Mocked:     %d
Failed:     %d
Mode:       %s
Total time: %s
=====================
`, title, res.RunID, res.Status, res.Summary.Success, res.Summary.Mocked, res.Summary.Failed,
		mode, res.Duration.Round(time.Millisecond))
	if res.Changes > 0 {
		cmd.Printf("Changes:    %d\n", res.Changes)
	}
}

func init() {
	pushCmd.Flags().BoolVar(&syncLive, "live", false, "Write to the ERP (default is a dry run)")
	pushCmd.Flags().StringVar(&syncPrefix, "prefix", "", "Item number prefix (defaults to the stored filter)")
	itemCmd.Flags().BoolVar(&syncLive, "live", false, "Write to the ERP (default is a dry run)")
	changesCmd.Flags().BoolVar(&syncLive, "live", false, "Write to the ERP (default is a dry run)")
	fullCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Build payloads without writing to the ERP")
	rootCmd.AddCommand(harvestCmd, pushCmd, itemCmd, changesCmd, fullCmd)
}
