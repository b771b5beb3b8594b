package cmd

import (
	"github.com/spf13/cobra"

	"plmsync.GO/core/registry"
)

func registered() []*cobra.Command {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryCmd); ok && v != nil {
		return v.([]*cobra.Command)
	}
	return nil
}

// Register adds a command from an extension package. Call from init().
// Panics once Apply has run or when the command name is already taken.
func Register(c *cobra.Command) {
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryCmd) {
		panic("cmd/registry: locked (register only during init before Apply)")
	}
	list := registered()
	for _, existing := range list {
		if existing.Name() == c.Name() {
			panic("cmd/registry: duplicate command " + c.Name())
		}
	}
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryCmd, append(list, c))
}

// Apply attaches registered commands to the root command and locks the registry.
// Names already defined by the built-in sync commands are skipped.
func Apply() {
	for _, c := range registered() {
		if found, _, err := rootCmd.Find([]string{c.Name()}); err == nil && found != rootCmd {
			continue
		}
		rootCmd.AddCommand(c)
	}
	registry.GlobalRegistry.Lock(registry.KeyRegistryCmd)
}
