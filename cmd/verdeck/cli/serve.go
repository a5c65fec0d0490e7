package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/verdeck/verdeck/internal/model"
	"github.com/verdeck/verdeck/internal/server"
	"github.com/verdeck/verdeck/internal/service"
	"github.com/verdeck/verdeck/internal/store"
)

const banner = `
__   _____ _ __ __| | ___  ___| | __
\ \ / / _ \ '__/ _` + "`" + ` |/ _ \/ __| |/ /
 \ V /  __/ | | (_| |  __/ (__|   <
  \_/ \___|_|  \__,_|\___|\___|_|\_\
`

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Verdeck admin API server",
		Long:  "Start the HTTP server that exposes the session-authenticated admin API for managing config versions.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 4000, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(dev bool) error {
	fmt.Print(banner)
	fmt.Println()

	// Set up logger
	logLevel := slog.LevelInfo
	if dev {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	// 1. Open the backing store
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	logger.Info("store opened",
		"driver", viper.GetString("database.driver"),
		"session_table", viper.GetString("session.table"))

	// 2. Seed the bootstrap admin if the table is empty
	if err := seedAdmin(context.Background(), st, logger); err != nil {
		return err
	}

	// 3. Build and start the HTTP server
	cfg := server.DefaultConfig()
	cfg.Host = viper.GetString("server.host")
	cfg.Port = viper.GetInt("server.port")
	cfg.CORSOrigins = viper.GetStringSlice("server.cors_origins")
	cfg.SessionMaxAge = viper.GetDuration("session.max_age")
	cfg.SessionCookieName = viper.GetString("session.cookie_name")
	cfg.SessionSecure = viper.GetBool("session.secure")
	cfg.RateWindow = viper.GetDuration("ratelimit.window")
	cfg.LoginRateLimit = viper.GetInt("ratelimit.login_max")
	cfg.RateLimit = viper.GetInt("ratelimit.max")

	srv := server.New(cfg, st, logger)

	fmt.Printf("→ Listening on http://%s:%d\n", cfg.Host, cfg.Port)
	fmt.Printf("→ OpenAPI: http://%s:%d/openapi.json\n", cfg.Host, cfg.Port)
	fmt.Printf("→ Health:  http://%s:%d/health\n", cfg.Host, cfg.Port)
	fmt.Println()

	return srv.ListenAndServe()
}

// seedAdmin creates the initial admin account when none exists yet,
// taking credentials from admin.username / admin.password (settable via
// VERDECK_ADMIN_USERNAME / VERDECK_ADMIN_PASSWORD).
func seedAdmin(ctx context.Context, st *store.Store, logger *slog.Logger) error {
	count, err := st.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	username := viper.GetString("admin.username")
	password := viper.GetString("admin.password")
	if username == "" || password == "" {
		logger.Warn("no admin account found - set VERDECK_ADMIN_USERNAME and VERDECK_ADMIN_PASSWORD, or run: verdeck admin create")
		return nil
	}
	if len(password) < 8 {
		return fmt.Errorf("bootstrap admin password must be at least 8 characters")
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}
	admin := &model.AdminUser{Username: username, PasswordHash: hash}
	if err := st.CreateAdmin(ctx, admin); err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}

	logger.Info("bootstrap admin created", "username", admin.Username)
	return nil
}
