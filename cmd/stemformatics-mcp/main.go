package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SampleBias/mcp-stem-informatics/internal/profile"
	"github.com/SampleBias/mcp-stem-informatics/server"
)

const version = "0.2.0"

var rootCmd = &cobra.Command{
	Use:   "stemformatics-mcp",
	Short: "HTTP gateway for the Stemformatics data portal API",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		p := &profile.Profile{
			Mode:              viper.GetString("mode"),
			Addr:              viper.GetString("addr"),
			Port:              viper.GetInt("port"),
			Version:           version,
			APIBaseURL:        viper.GetString("api-base-url"),
			APITimeoutSeconds: viper.GetInt("api-timeout-seconds"),
			UseAuth:           viper.GetBool("use-auth"),
			APIKey:            viper.GetString("api-key"),
			CacheEnabled:      viper.GetBool("cache-enabled"),
			CacheTTLSeconds:   viper.GetInt("cache-ttl-seconds"),
			CacheMaxSizeMB:    viper.GetInt("cache-max-size-mb"),
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		s, err := server.NewServer(ctx, p)
		if err != nil {
			return fmt.Errorf("create server: %w", err)
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- s.Start(ctx)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			s.Shutdown(context.Background())
			return nil
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("mode", "dev", `server mode, "dev" or "prod"`)
	flags.String("addr", "", "binding address")
	flags.Int("port", 8230, "binding port")
	flags.String("api-base-url", "", "Stemformatics API base URL")
	flags.Int("api-timeout-seconds", 30, "upstream request timeout in seconds")
	flags.Bool("use-auth", false, "send a bearer token on upstream requests")
	flags.String("api-key", "", "bearer token for upstream requests")
	flags.Bool("cache-enabled", true, "enable the response cache")
	flags.Int("cache-ttl-seconds", 3600, "cache entry lifetime in seconds")
	flags.Int("cache-max-size-mb", 100, "cache size budget in megabytes")

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("stemformatics")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Optional config file next to the binary or in the working directory.
	viper.SetConfigName("stemformatics-mcp")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
