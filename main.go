// main is the entry point of the safepath CLI.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/safepath/safepath/cmd"
	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/internal/iocache"
)

func main() {
	// A missing .env file is fine; SAFEPATH_* variables may come from the shell.
	_ = godotenv.Load()

	defer iocache.CloseStores()
	cmd.SetStoreManager(iocache.Manager)

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		contract.LogWarn("Command failed", err)
		iocache.CloseStores()
		os.Exit(1)
	}
}
