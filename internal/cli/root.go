package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"apidoc/config"
	"apidoc/internal/adapter/logging"
)

// Version is the tool release version, set at build time.
var Version = "0.1.0"

var (
	cfgFile string
	cfg     *config.Config
	rootDir string

	debugFlag   bool
	verboseFlag bool
	silentFlag  bool
)

// errReported marks a failure that has already been logged.
var errReported = errors.New("generation failed")

var rootCmd = &cobra.Command{
	Use:   "apidoc",
	Short: "Generate API documentation data from tagged source comments",
	Long: `apidoc scans source files for @api comment blocks, resolves shared
definitions and structures, and writes the endpoint list and project metadata
as JSON.

Example usage:
  apidoc generate -i src/ -o doc/     # Generate from src into doc
  apidoc generate --dry-run           # Parse and validate only
  apidoc history list                 # Show stored versions`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./apidoc.yaml, ./apidoc.yml or ./apidoc.json)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "project directory (default is current directory)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "show debug messages")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "show verbose messages")
	rootCmd.PersistentFlags().BoolVar(&silentFlag, "silent", false, "turn all output off")
	rootCmd.MarkFlagsMutuallyExclusive("debug", "verbose", "silent")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

// newLogger builds the logger from the configuration, with the level flags
// taking precedence.
func newLogger(c *config.Config) (*logging.Logger, error) {
	level := c.Logging.Level
	switch {
	case debugFlag:
		level = logging.LevelDebug
	case verboseFlag:
		level = logging.LevelVerbose
	case silentFlag:
		level = logging.LevelSilent
	}
	return logging.New(os.Stderr, level, c.Logging.Format)
}
