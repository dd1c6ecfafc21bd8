package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind            string
	packsDir        string
	port            int
	prefix          string
	profile         bool
	questionSeconds int
	revealDelay     time.Duration
	sessionTimeout  time.Duration
	themesDir       string
	tlsCert         string
	tlsKey          string
	verbose         bool
	version         bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.questionSeconds < minQuestionSeconds || c.questionSeconds > maxQuestionSeconds {
		return fmt.Errorf("invalid question duration (must be between %d-%d seconds inclusive): %d",
			minQuestionSeconds, maxQuestionSeconds, c.questionSeconds)
	}
	if c.revealDelay <= 0 {
		return fmt.Errorf("invalid reveal delay (must be positive): %s", c.revealDelay)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("QUICKQUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "quickquiz",
		Short:         "A realtime multiplayer quiz server with host-paced rooms.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: QUICKQUIZ_BIND)")
	fs.StringVar(&cfg.packsDir, "packs", "./packs", "directory containing question pack json files (env: QUICKQUIZ_PACKS)")
	fs.IntVarP(&cfg.port, "port", "p", 8793, "port to listen on (env: QUICKQUIZ_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: QUICKQUIZ_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: QUICKQUIZ_PROFILE)")
	fs.IntVar(&cfg.questionSeconds, "question-seconds", 30, "default per-question timer, when a room does not set one (env: QUICKQUIZ_QUESTION_SECONDS)")
	fs.DurationVar(&cfg.revealDelay, "reveal-delay", 5*time.Second, "grace period before a revealed question auto-advances (env: QUICKQUIZ_REVEAL_DELAY)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle rooms are ended (env: QUICKQUIZ_IDLE_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.themesDir, "themes", "./themes", "directory containing theme json files (env: QUICKQUIZ_THEMES)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: QUICKQUIZ_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: QUICKQUIZ_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: QUICKQUIZ_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: QUICKQUIZ_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("quickquiz v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
