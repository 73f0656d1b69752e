// storefront is the command-line front door to the dessert shop: it serves
// the REST/MCP façade, speaks MCP over stdio, and runs single shopping or
// admin operations for scripts.
//
// Examples:
//
//	storefront login --email alice@example.com
//	storefront products --in-stock -q cannoli
//	storefront cart add 64f1c2 2
//	storefront checkout
//	storefront serve --port 8080
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"storefront/internal/config"
	"storefront/internal/storefront"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s✗ %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
}

// cli is the state shared by every command of one invocation.
type cli struct {
	configPath string
	profile    string
	quiet      bool
	noColor    bool

	cfg    *config.Config
	logger *slog.Logger
	app    *storefront.App
	out    io.Writer
	stdin  *bufio.Reader
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "storefront",
		Short: "Dessert shop storefront client",
		Long: `storefront browses the shop catalog, manages the cart and places orders
against the shop's REST API.

The session is persisted (SQLite by default) so a login survives between
invocations. Without a session the cart is a guest cart that lives only as
long as the process, which makes it useful under 'serve' and 'mcp' only.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (JSON or YAML); overrides CONFIG_FILE")
	pf.StringVar(&c.profile, "profile", "", "session profile; overrides SESSION_PROFILE")
	pf.BoolVarP(&c.quiet, "quiet", "q", false, "only print results")
	pf.BoolVar(&c.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		c.serveCmd(),
		c.mcpCmd(),
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.forgotPasswordCmd(),
		c.resetPasswordCmd(),
		c.productsCmd(),
		c.categoriesCmd(),
		c.cartCmd(),
		c.checkoutCmd(),
		c.ordersCmd(),
		c.adminCmd(),
	)
	return root
}

// setup loads configuration and the logger. The App is opened lazily so
// commands that fail flag validation never touch the session store.
func (c *cli) setup(cmd *cobra.Command) error {
	c.out = cmd.OutOrStdout()
	if c.noColor || os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
	if c.configPath != "" {
		os.Setenv("CONFIG_FILE", c.configPath)
	}

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if c.profile != "" {
		cfg.Session.Profile = c.profile
	}
	c.cfg = cfg
	c.logger = initLogger(cmd.ErrOrStderr(), cfg)
	return nil
}

// open builds the App on first use.
func (c *cli) open(ctx context.Context) (*storefront.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	app, err := storefront.New(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, err
	}
	c.app = app
	return app, nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

// initLogger creates a structured logger configured for the environment.
// Production uses JSON format for Cloud Logging compatibility.
// Development uses text format for readability. Logs go to w (stderr) so
// command output on stdout stays clean.
func initLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		// Add source location in debug mode
		AddSource: level == slog.LevelDebug,
	}

	if cfg.Environment == "production" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
