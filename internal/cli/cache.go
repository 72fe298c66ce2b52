package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/argus-ci/argus/internal/config"
	"github.com/argus-ci/argus/internal/transport"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the response cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached model responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openCache()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if err := cache.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Println("Cache cleared.")
		return nil
	},
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the cache directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openCache()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Println(cache.Dir())
		return nil
	},
}

func openCache() (*transport.Cache, error) {
	cfg, err := config.Load(flagConfigFile, nil)
	if err != nil {
		cfg = config.Default()
	}
	return transport.NewCache(true, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePathCmd)
}
