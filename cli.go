//go:build cli
// +build cli

package main

import (
	_ "plmsync.GO/custom"

	"plmsync.GO/cmd"
	"plmsync.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
