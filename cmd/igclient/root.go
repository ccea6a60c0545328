package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"igclient/pkg/auth"
	"igclient/pkg/config"
	"igclient/pkg/instagram"
	"igclient/pkg/logger"
	"igclient/pkg/session"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	account    string
	noSession  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "igclient",
	Short: "A command-line client for the Instagram private mobile API",
	Long: `igclient speaks the Instagram private mobile API: it signs request
bodies, maintains an authenticated session and drives the photo, video
and album upload pipelines.

Features:
  - Secure credential storage using system keychain
  - Session persistence that skips repeated logins
  - Smart rate limiting to avoid API restrictions
  - Automatic retry on transient network failures
  - Photo, chunked video and album uploads
  - Direct message and media share broadcasts`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.igclient.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&account, "account", "", "stored account to use")
	rootCmd.PersistentFlags().BoolVar(&noSession, "no-session", false, "do not load or save a persisted session")

	rootCmd.SetVersionTemplate(`igclient {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig resolves configuration from file, environment and the
// credential store, in that order.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if cfg.Account.Username == "" || cfg.Account.Password == "" {
		manager, err := auth.NewManager()
		if err == nil {
			var stored *auth.Account
			if account != "" {
				stored, err = manager.Retrieve(account)
			} else {
				stored, err = manager.RetrieveDefault()
			}
			if err == nil && stored != nil {
				cfg.Account.Username = stored.Username
				cfg.Account.Password = stored.Password
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newClient builds a logged-in client: a persisted session is restored
// when present, otherwise the full login sequence runs and the fresh
// session is saved.
func newClient(cmd *cobra.Command) (*instagram.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger.Initialize(&cfg.Logging)
	log := logger.GetLogger()

	client, err := instagram.New(cfg, log)
	if err != nil {
		return nil, err
	}

	if !noSession {
		if manager, err := session.NewManager(cfg.Account.Username); err == nil {
			if sess, err := manager.Load(); err == nil && sess != nil {
				if err := client.RestoreSession(sess); err == nil {
					return client, nil
				}
			}
		}
	}

	if err := client.Login(cmd.Context()); err != nil {
		return nil, err
	}

	if !noSession {
		if manager, err := session.NewManager(cfg.Account.Username); err == nil {
			if sess, err := client.ExportSession(); err == nil {
				if err := manager.Save(sess); err != nil {
					log.WarnWithFields("failed to persist session", map[string]interface{}{
						"error": err.Error(),
					})
				}
			}
		}
	}

	return client, nil
}
