// main is the entry point for the prodscore CLI.
package main

import (
	"os"

	"github.com/huangsam/prodscore/cmd"
	"github.com/huangsam/prodscore/internal/contract"
	"github.com/huangsam/prodscore/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	code := run()
	os.Exit(code)
}

// run executes the root command and releases resources before main exits.
func run() int {
	defer iocache.CloseStores()
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			contract.LogWarn("Failed to stop profiling", err)
		}
	}()

	if err := cmd.Execute(); err != nil {
		contract.Logger.Error(err)
		return 1
	}
	return 0
}
