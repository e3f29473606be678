package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/akalem0808/memori/internal/profile"
	"github.com/akalem0808/memori/internal/version"
	"github.com/akalem0808/memori/server"
	"github.com/akalem0808/memori/server/auth"
	"github.com/akalem0808/memori/store"
	"github.com/akalem0808/memori/store/db"
)

const (
	greetingBanner = `Memori - your audio journal, searchable and summarized.`
)

var (
	rootCmd = &cobra.Command{
		Use:   "memori",
		Short: "An audio-journaling service with emotion-aware search",
		Run: func(_ *cobra.Command, _ []string) {
			ctx, cancel := context.WithCancel(context.Background())
			instanceProfile := &profile.Profile{
				Mode:        viper.GetString("mode"),
				Addr:        viper.GetString("addr"),
				Port:        viper.GetInt("port"),
				Data:        viper.GetString("data"),
				Driver:      viper.GetString("driver"),
				DSN:         viper.GetString("dsn"),
				InstanceURL: viper.GetString("instance-url"),
				Secret:      viper.GetString("secret"),
				Version:     version.GetCurrentVersion(viper.GetString("mode")),
			}
			instanceProfile.FromEnv()
			if err := instanceProfile.Validate(); err != nil {
				slog.Error("invalid configuration", "error", err)
				cancel()
				return
			}

			dbDriver, err := db.NewDBDriver(instanceProfile)
			if err != nil {
				cancel()
				slog.Error("failed to create db driver", "error", err)
				return
			}

			storeInstance := store.New(dbDriver, instanceProfile)
			if err := storeInstance.Migrate(ctx); err != nil {
				cancel()
				slog.Error("failed to migrate database", "error", err)
				return
			}

			if err := ensureHostUser(ctx, storeInstance); err != nil {
				cancel()
				slog.Error("failed to ensure host user", "error", err)
				return
			}

			s, err := server.NewServer(ctx, instanceProfile, storeInstance)
			if err != nil {
				cancel()
				slog.Error("failed to create server", "error", err)
				return
			}

			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)
			go func() {
				sig := <-c
				slog.Info("received signal, shutting down", "signal", sig.String())
				s.Shutdown(ctx)
				cancel()
			}()

			printGreetings(instanceProfile)

			if err := s.Start(ctx); err != nil {
				slog.Error("failed to start server", "error", err)
				cancel()
			}

			// Wait for Ctrl+C.
			<-ctx.Done()
		},
	}
)

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8081)

	rootCmd.PersistentFlags().String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, can be "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().String("instance-url", "", "the url of your memori instance")
	rootCmd.PersistentFlags().String("secret", "", "secret used to sign access tokens")

	if err := viper.BindPFlag("mode", rootCmd.PersistentFlags().Lookup("mode")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("addr", rootCmd.PersistentFlags().Lookup("addr")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("data", rootCmd.PersistentFlags().Lookup("data")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("driver", rootCmd.PersistentFlags().Lookup("driver")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("dsn", rootCmd.PersistentFlags().Lookup("dsn")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("instance-url", rootCmd.PersistentFlags().Lookup("instance-url")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("secret", rootCmd.PersistentFlags().Lookup("secret")); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("memori")
	viper.AutomaticEnv()
}

// ensureHostUser creates the host account on first run when credentials
// are provided, so token sign-in works without a registration flow.
func ensureHostUser(ctx context.Context, st *store.Store) error {
	username := os.Getenv("MEMORI_USERNAME")
	password := os.Getenv("MEMORI_PASSWORD")
	if username == "" || password == "" {
		return nil
	}

	existing, err := st.GetUser(ctx, &store.FindUser{Username: &username})
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := st.CreateUser(ctx, &store.User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         "host",
		CreatedTs:    time.Now().Unix(),
		RowStatus:    "NORMAL",
	}); err != nil {
		return err
	}
	slog.Info("host user created", "username", username)
	return nil
}

func printGreetings(p *profile.Profile) {
	fmt.Printf("%s\n\n", greetingBanner)
	fmt.Printf("Version %s has been started on port %d with driver %q in %s mode\n", p.Version, p.Port, p.Driver, p.Mode)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
