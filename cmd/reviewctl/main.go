// Command reviewctl drives the review widget from a terminal against a local
// SQLite store, the way one browser profile would.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/event"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/repository"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/repository/sqlite"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/service"
	pkgconfig "github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/config"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/logger"
)

// envConfig is read from REVIEWCTL_* variables. Flags override it.
type envConfig struct {
	DB       string `env:"DB" envDefault:"./reviews.db"`
	Client   string `env:"CLIENT" envDefault:"reviewctl"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"warn"`
}

// cli holds the state shared by every subcommand.
type cli struct {
	dbPath   string
	clientID string
	logLevel string
	asJSON   bool

	kv       *sqlite.KV
	reviews  *service.ReviewService
	sessions *service.SessionService
	users    *service.UserService
	catalog  *service.CatalogService
}

func main() {
	c := &cli{}
	err := newRootCmd(c).Execute()
	if cerr := c.close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree around c. The caller closes c once the
// command has run, whether or not it failed.
func newRootCmd(c *cli) *cobra.Command {
	var env envConfig
	if err := pkgconfig.LoadWithPrefix(&env, "REVIEWCTL_"); err != nil {
		slog.Warn("ignoring environment", slog.String("error", err.Error()))
		env = envConfig{DB: "./reviews.db", Client: "reviewctl", LogLevel: "warn"}
	}

	root := &cobra.Command{
		Use:           "reviewctl",
		Short:         "Read and write product reviews in a local store",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd.Context(), cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.dbPath, "db", env.DB, "path of the SQLite review store (REVIEWCTL_DB)")
	root.PersistentFlags().StringVar(&c.clientID, "client", env.Client, "client id whose user and widget state are used (REVIEWCTL_CLIENT)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", env.LogLevel, "log level: debug, info, warn or error")
	root.PersistentFlags().BoolVar(&c.asJSON, "json", false, "print results as JSON")

	root.AddCommand(
		c.registerCmd(),
		c.whoamiCmd(),
		c.logoutCmd(),
		c.productsCmd(),
		c.addCmd(),
		c.listCmd(),
		c.summaryCmd(),
		c.reactCmd("like", "Toggle your like on a review", c.toggleLike),
		c.reactCmd("dislike", "Toggle your dislike on a review", c.toggleDislike),
		c.reportCmd(),
		c.editCmd(),
		c.deleteCmd(),
	)
	return root
}

func (c *cli) open(ctx context.Context, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.NewText(c.logLevel, cmd.ErrOrStderr())

	kv, err := sqlite.Open(ctx, c.dbPath)
	if err != nil {
		return fmt.Errorf("open store %s: %w", c.dbPath, err)
	}
	c.kv = kv

	reviews := repository.NewReviewStore(kv, log)
	users := repository.NewUserStore(kv, log)
	sessions := repository.NewSessionStore(kv)
	events := event.NoopPublisher{}

	c.reviews = service.NewReviewService(reviews, users, sessions, events, service.DefaultNoticeTTL, log)
	c.sessions = service.NewSessionService(reviews, users, sessions, events, log)
	c.users = service.NewUserService(users, log)
	c.catalog = service.NewCatalogService()
	return nil
}

func (c *cli) close() error {
	if c.kv == nil {
		return nil
	}
	err := c.kv.Close()
	c.kv = nil
	return err
}

// timeout bounds a single command against a slow or locked store.
func timeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, 10*time.Second)
}
