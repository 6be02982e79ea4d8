package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	internalcli "github.com/ghautomation/testpage/internal/cli"
	"github.com/ghautomation/testpage/internal/config"
	"github.com/ghautomation/testpage/internal/database"
	"github.com/ghautomation/testpage/internal/handlers"
	"github.com/ghautomation/testpage/internal/metrics"
	"github.com/ghautomation/testpage/internal/models"
	"github.com/ghautomation/testpage/internal/repository"
	"github.com/ghautomation/testpage/internal/services"
	"github.com/ghautomation/testpage/internal/verify"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var version = "0.1.0"

// openHistory connects to the run history database and returns its repository.
// The returned interface is nil when no postgres settings are present.
func openHistory(getenv func(string) string) (services.RunRepository, error) {
	if !config.PostgresConfigured(getenv) {
		return nil, nil
	}

	if err := database.Connect(getenv); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Connected to database successfully")

	if err := database.RunMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	return repository.NewRunRepository(), nil
}

// buildServerDependencies creates all dependencies needed for the server
func buildServerDependencies(getenv func(string) string) (internalcli.ServerDependencies, error) {
	var deps internalcli.ServerDependencies

	deps.ServerConfig = config.LoadServerConfig(getenv)

	m := metrics.New()
	deps.MetricsHandler = m.Handler()
	deps.HealthHandler = handlers.HealthHandler()

	pageHandler, err := handlers.NewDummyPageHandler(deps.ServerConfig.TemplatePath("page.html"), models.DefaultDummyPage(), m)
	if err != nil {
		return deps, fmt.Errorf("failed to create page handler: %w", err)
	}
	deps.PageHandler = pageHandler

	runRepo, err := openHistory(getenv)
	if err != nil {
		return deps, err
	}
	if runRepo != nil {
		deps.RunsHandler = handlers.NewRunsHandler(services.NewRunService(runRepo, m))
	} else {
		log.Println("Run history disabled, POSTGRES_* not set")
	}

	return deps, nil
}

// ServeCommand returns the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the dummy test page",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "port to listen on (overrides PORT)"},
		},
		Action: func(c *cli.Context) error {
			getenv := os.Getenv
			if c.IsSet("port") {
				getenv = overlay(getenv, map[string]string{"PORT": c.String("port")})
			}

			deps, err := buildServerDependencies(getenv)
			defer database.Close()
			if err != nil {
				return err
			}

			return internalcli.RunServe(deps)
		},
	}
}

// VerifyCommand returns the verify command
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Run the page checks in a browser against a served page",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "base-url", Usage: "URL of the served page (overrides BASE_URL)"},
			&cli.StringFlag{Name: "browser", Usage: "chromium, firefox or webkit (overrides BROWSER)"},
			&cli.BoolFlag{Name: "headed", Usage: "show the browser window"},
			&cli.DurationFlag{Name: "timeout", Usage: "assertion and dialog timeout (overrides TIMEOUT_MS)"},
			&cli.BoolFlag{Name: "record", Usage: "record the run in the history database"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadVerifyConfig(os.Getenv)
			if err != nil {
				return err
			}
			if c.IsSet("base-url") {
				cfg.BaseURL = c.String("base-url")
			}
			if c.IsSet("browser") {
				cfg.Browser = c.String("browser")
			}
			if c.Bool("headed") {
				cfg.Headless = false
			}
			if c.IsSet("timeout") {
				cfg.Timeout = c.Duration("timeout")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			var runRepo services.RunRepository
			if c.Bool("record") {
				runRepo, err = openHistory(os.Getenv)
				defer database.Close()
				if err != nil {
					return err
				}
				if runRepo == nil {
					return fmt.Errorf("--record requires POSTGRES_USER, POSTGRES_PASSWORD, POSTGRES_DB and POSTGRES_HOSTNAME")
				}
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, err = internalcli.RunVerify(ctx, internalcli.VerifyDependencies{
				Config:     cfg,
				RunService: services.NewRunService(runRepo, nil),
				Launch:     verify.Launch,
				Out:        c.App.Writer,
			})
			return err
		},
	}
}

// RunsCommand returns the runs command
func RunsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "List recorded verification runs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 20, Usage: "number of runs to show"},
		},
		Action: func(c *cli.Context) error {
			runRepo, err := openHistory(os.Getenv)
			defer database.Close()
			if err != nil {
				return err
			}

			runs, err := services.NewRunService(runRepo, nil).ListRuns(c.Int("limit"))
			if err != nil {
				return err
			}

			fmt.Fprintln(c.App.Writer, internalcli.RenderRuns(runs))
			return nil
		},
	}
}

// InstallCommand returns the install command
func InstallCommand() *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Install the playwright driver and browser",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "browser", Value: config.BrowserChromium, Usage: "browser to install"},
		},
		Action: func(c *cli.Context) error {
			start := time.Now()
			if err := verify.Install(c.String("browser")); err != nil {
				return err
			}
			log.Printf("Installed playwright %s in %s", c.String("browser"), time.Since(start).Round(time.Second))
			return nil
		},
	}
}

// overlay returns a getenv that prefers values set on the command line
func overlay(getenv func(string) string, values map[string]string) func(string) string {
	return func(key string) string {
		if v, ok := values[key]; ok {
			return v
		}
		return getenv(key)
	}
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	app := &cli.App{
		Name:    "testpage",
		Usage:   "GH automation dummy page and its browser verification",
		Version: version,
		Commands: []*cli.Command{
			ServeCommand(),
			VerifyCommand(),
			RunsCommand(),
			InstallCommand(),
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		log.Fatal(err)
	}
}
