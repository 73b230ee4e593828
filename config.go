package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind          string
	enforceAdmin  bool
	maxUploadSize int64
	metrics       bool
	port          int
	prefix        string
	profile       bool
	scoreOnce     bool
	tlsCert       string
	tlsKey        string
	uploadBurst   int
	uploadDir     string
	uploadRate    float64
	verbose       bool
	version       bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.uploadDir == "" {
		return errors.New("--upload-dir must not be empty")
	}
	if c.maxUploadSize < 1 {
		return fmt.Errorf("invalid max upload size (must be positive): %d", c.maxUploadSize)
	}
	if c.uploadRate < 0 {
		return fmt.Errorf("invalid upload rate (must not be negative): %v", c.uploadRate)
	}
	if c.uploadBurst < 0 {
		return fmt.Errorf("invalid upload burst (must not be negative): %d", c.uploadBurst)
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
	v.SetEnvPrefix("GUESSAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "guessage",
		Short:         "A real-time age guessing game for a room full of people.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: GUESSAGE_BIND)")
	fs.BoolVar(&cfg.enforceAdmin, "enforce-admin", false, "only allow the admin player to start rounds and reset (env: GUESSAGE_ENFORCE_ADMIN)")
	fs.Int64Var(&cfg.maxUploadSize, "max-upload-size", 10<<20, "maximum size in bytes of an uploaded image (env: GUESSAGE_MAX_UPLOAD_SIZE)")
	fs.BoolVar(&cfg.metrics, "metrics", false, "expose prometheus metrics at /metrics (env: GUESSAGE_METRICS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: GUESSAGE_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: GUESSAGE_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: GUESSAGE_PROFILE)")
	fs.BoolVar(&cfg.scoreOnce, "score-once", false, "only score a player's first guess in each round (env: GUESSAGE_SCORE_ONCE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: GUESSAGE_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: GUESSAGE_TLS_KEY)")
	fs.IntVar(&cfg.uploadBurst, "upload-burst", 5, "image uploads allowed in a burst per client (env: GUESSAGE_UPLOAD_BURST)")
	fs.StringVar(&cfg.uploadDir, "upload-dir", "uploads", "directory to store uploaded images in (env: GUESSAGE_UPLOAD_DIR)")
	fs.Float64Var(&cfg.uploadRate, "upload-rate", 1, "sustained image uploads per second per client, 0 to disable limiting (env: GUESSAGE_UPLOAD_RATE)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: GUESSAGE_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: GUESSAGE_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("guessage v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
