package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/CodeTanzania/ewea-case/internal/config"
	"github.com/CodeTanzania/ewea-case/internal/domain/caserecord"
	"github.com/CodeTanzania/ewea-case/internal/platform/auth"
	"github.com/CodeTanzania/ewea-case/internal/platform/db"
	"github.com/CodeTanzania/ewea-case/internal/platform/middleware"
	"github.com/CodeTanzania/ewea-case/internal/platform/sequence"
	"github.com/CodeTanzania/ewea-case/internal/predefine"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ewea-case-server",
		Short: "Emergency case registry API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the case registry API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample or file-provided cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("count")
			file, _ := cmd.Flags().GetString("file")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			redisOpts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				return fmt.Errorf("parse REDIS_URL: %w", err)
			}
			rdb := redis.NewClient(redisOpts)
			defer rdb.Close()

			predefines := predefine.NewRepoPG(pool)
			defaults, err := predefine.ResolveDefaults(ctx, predefines)
			if err != nil {
				return err
			}
			gen := sequence.NewGenerator(sequence.NewRedisCounter(rdb), cfg.CountryCode)
			repo := caserecord.NewRepoPG(pool)
			svc := caserecord.NewService(repo, predefines, defaults, gen)

			if file != "" {
				return seedFromFile(ctx, svc, repo, file)
			}

			def := caserecord.Definition()
			for i := 0; i < count; i++ {
				c, err := caseFromFake(def.FakeRecord())
				if err != nil {
					return fmt.Errorf("build sample case: %w", err)
				}
				if err := svc.Create(ctx, c); err != nil {
					return fmt.Errorf("seed case %d: %w", i+1, err)
				}
				fmt.Printf("seeded case %s\n", c.Number)
			}
			return nil
		},
	}
	cmd.Flags().Int("count", 10, "Number of sample cases to insert")
	cmd.Flags().String("file", "", "JSON file with an array of cases to import")
	return cmd
}

// seedFromFile imports cases from a JSON array, skipping records that
// already exist by id or number.
func seedFromFile(ctx context.Context, svc *caserecord.Service, repo caserecord.Repository, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var seeds []*caserecord.Case
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	for i, seed := range seeds {
		crit := caserecord.PrepareSeedCriteria(seed)
		var existing *caserecord.Case
		switch {
		case crit.ID != nil:
			existing, err = repo.GetByID(ctx, *crit.ID)
		case crit.Number != "":
			existing, err = repo.GetByNumber(ctx, crit.Number)
		default:
			err = caserecord.ErrNotFound
		}
		if err != nil && err != caserecord.ErrNotFound {
			return fmt.Errorf("check seed %d: %w", i+1, err)
		}
		if existing != nil {
			fmt.Printf("skipped existing case %s\n", existing.Number)
			continue
		}
		if err := svc.Create(ctx, seed); err != nil {
			return fmt.Errorf("import seed %d: %w", i+1, err)
		}
		fmt.Printf("imported case %s\n", seed.Number)
	}
	return nil
}

// caseFromFake converts a generated field map into a Case. Reference
// fields are left empty so normalization fills the configured defaults.
func caseFromFake(record map[string]interface{}) (*caserecord.Case, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	c := &caserecord.Case{}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, err
	}
	c.Number = ""
	return c, nil
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Redis backs the case number counter
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid REDIS_URL")
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	logger.Info().Msg("connected to redis")

	// Lookup taxonomy defaults are resolved once at startup; a missing
	// seed is a deployment error.
	predefines := predefine.NewRepoPG(pool)
	defaults, err := predefine.ResolveDefaults(ctx, predefines)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve lookup defaults")
	}

	gen := sequence.NewGenerator(sequence.NewRedisCounter(rdb), cfg.CountryCode)
	caseSvc := caserecord.NewService(caserecord.NewRepoPG(pool), predefines, defaults, gen)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Health check
	e.GET("/health", db.HealthHandler(pool))

	// Versioned API surface, behind authentication
	api := e.Group(cfg.APIBasePath())
	if cfg.IsDev() {
		api.Use(auth.DevAuthMiddleware())
	} else {
		api.Use(auth.JWTMiddleware(auth.JWTConfig{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		}))
	}
	caserecord.NewHandler(caseSvc).RegisterRoutes(api)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("base_path", cfg.APIBasePath()).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
