package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/anuj-jha-1/Expense-Tracker/internal/auth"
	"github.com/anuj-jha-1/Expense-Tracker/internal/bootstrap"
	"github.com/anuj-jha-1/Expense-Tracker/internal/config"
	"github.com/anuj-jha-1/Expense-Tracker/internal/events"
	"github.com/anuj-jha-1/Expense-Tracker/internal/handler/dto"
	"github.com/anuj-jha-1/Expense-Tracker/internal/metrics"
	"github.com/anuj-jha-1/Expense-Tracker/internal/service"
)

// commandTimeout bounds every command, including startup retries.
const commandTimeout = 2 * time.Minute

// readPassword is swapped out in tests to avoid touching the terminal.
var readPassword = term.ReadPassword

type migrateCmd struct {
	Down bool `help:"Roll back one migration instead of applying all pending ones."`
}

func (c *migrateCmd) Run(g *cmdEnv) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	if err := bootstrap.Migrate(cfg, c.Down); err != nil {
		return fmt.Errorf("migrate %s: %s", cfg.StoreBackend, bootstrap.SanitizeError(err, cfg.DatabaseURL))
	}
	direction := "up"
	if c.Down {
		direction = "down one step"
	}
	fmt.Fprintf(g.stdout, "migrated %s %s\n", cfg.StoreBackend, direction)
	return nil
}

type createUserCmd struct {
	Email         string `required help:"Account email."`
	PasswordStdin bool   `name:"password-stdin" help:"Read the password from the first line of stdin instead of prompting."`
}

func (c *createUserCmd) Run(g *cmdEnv) error {
	password, err := g.password(c.PasswordStdin)
	if err != nil {
		return err
	}

	return g.withApp(func(ctx context.Context, a *app) error {
		res, err := a.auth.Register(ctx, c.Email, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(g.stdout, "created user %s (%s)\n", res.User.ID, res.User.Email)
		return nil
	})
}

type issueTokenCmd struct {
	Email string `required help:"Account email."`
}

func (c *issueTokenCmd) Run(g *cmdEnv) error {
	return g.withApp(func(ctx context.Context, a *app) error {
		res, err := a.auth.IssueToken(ctx, c.Email)
		if err != nil {
			return err
		}
		fmt.Fprintln(g.stdout, res.Token)
		return nil
	})
}

type summaryCmd struct {
	Email string `required help:"Account email."`
}

type summaryReport struct {
	Email   string              `json:"email"`
	Summary dto.SummaryResponse `json:"summary"`
	Stats   dto.StatsResponse   `json:"stats"`
}

func (c *summaryCmd) Run(g *cmdEnv) error {
	return g.withApp(func(ctx context.Context, a *app) error {
		user, err := a.auth.LookupUser(ctx, c.Email)
		if err != nil {
			return err
		}

		summary, err := a.ledger.Summary(ctx, user.ID)
		if err != nil {
			return err
		}
		stats, err := a.ledger.Stats(ctx, user.ID)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(g.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaryReport{
			Email:   user.Email,
			Summary: dto.ToSummaryResponse(summary),
			Stats:   dto.ToStatsResponse(stats),
		})
	})
}

// app is the set of services a command runs against.
type app struct {
	store    bootstrap.Store
	sessions bootstrap.SessionStore
	auth     *service.AuthService
	ledger   *service.LedgerService
}

func (g *globals) config() (*config.Config, error) {
	if g.EnvFile != "" {
		if err := godotenv.Load(g.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", g.EnvFile, err)
		}
	}
	return config.Load()
}

// withApp opens the configured store and cache, runs fn and closes both.
// Events are not published from the CLI.
func (g *cmdEnv) withApp(fn func(ctx context.Context, a *app) error) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: bootstrap.ParseLogLevel(cfg.LogLevel),
	}))

	store, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := bootstrap.OpenCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer sessions.Close()

	recorder := metrics.NewNoop()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	return fn(ctx, &app{
		store:    store,
		sessions: sessions,
		auth:     service.NewAuthService(store, sessions, tokens, recorder, logger),
		ledger:   service.NewLedgerService(store, events.NewNoop(), recorder, logger),
	})
}

// password reads the new account's password from stdin or the terminal.
func (g *cmdEnv) password(fromStdin bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(g.stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read password from stdin: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(g.stdout, "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(g.stdout)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
