// Package cli is stagectl, the DJ booth and booking console for the
// stagedoor API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stagedoor/backend/internal/djclient"
	"github.com/stagedoor/backend/internal/utils"
)

const configName = ".stagectl"

// app carries what every subcommand shares. Each root command owns its own
// viper instance.
type app struct {
	cfgFile string
	v       *viper.Viper
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "stagectl",
		Short: "Console for the stagedoor venue backend.",
		Long: `stagectl drives the DJ request queue, the band discovery board and the
break-even calculator of a stagedoor API from the command line.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.stagectl.yaml)")
	root.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	root.PersistentFlags().String("api", "", "API base URL (default http://localhost:8080)")
	root.PersistentFlags().String("token", "", "Session token")
	root.PersistentFlags().Duration("timeout", 0, "HTTP timeout (default 10s)")

	a.v.BindPFlag("loglevel", root.PersistentFlags().Lookup("loglevel"))
	a.v.BindPFlag("api.url", root.PersistentFlags().Lookup("api"))
	a.v.BindPFlag("api.token", root.PersistentFlags().Lookup("token"))
	a.v.BindPFlag("api.timeout", root.PersistentFlags().Lookup("timeout"))

	root.AddCommand(
		a.requestsCmd(),
		a.playCmd(),
		a.blacklistCmd(),
		a.cooldownsCmd(),
		a.bandsCmd(),
		a.breakEvenCmd(),
		a.refreshCmd(),
		a.loginCmd(),
	)
	return root
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads the config file and STAGECTL_* variables.
func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return err
		}
		a.v.AddConfigPath(home)
		a.v.SetConfigName(configName)
		a.v.SetConfigType("yaml")
	}

	a.v.SetEnvPrefix("stagectl")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	a.v.SetDefault("api.url", "http://localhost:8080")
	a.v.SetDefault("api.timeout", 10*time.Second)

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	utils.SetLogLevel(a.v.GetString("loglevel"))
	return nil
}

// configPath is where login persists the token.
func (a *app) configPath() (string, error) {
	if used := a.v.ConfigFileUsed(); used != "" {
		return used, nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configName+".yaml"), nil
}

func (a *app) client() *djclient.Client {
	return djclient.New(djclient.Options{
		BaseURL: a.v.GetString("api.url"),
		Token:   a.v.GetString("api.token"),
		Timeout: a.v.GetDuration("api.timeout"),
	})
}
