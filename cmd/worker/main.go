package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/ekip-platform/ekip-api/config"
	"github.com/ekip-platform/ekip-api/internal/bootstrap"
	"github.com/ekip-platform/ekip-api/internal/db"
	domainrepo "github.com/ekip-platform/ekip-api/internal/domains/repository"
	domainsvc "github.com/ekip-platform/ekip-api/internal/domains/service"
	"github.com/ekip-platform/ekip-api/internal/jobs"
	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/ekip-platform/ekip-api/internal/migrate"
	notifrepo "github.com/ekip-platform/ekip-api/internal/notifications/repository"
	projrepo "github.com/ekip-platform/ekip-api/internal/projects/repository"
	projsvc "github.com/ekip-platform/ekip-api/internal/projects/service"
)

const usage = `usage: worker <command>

commands:
  migrate                 apply pending database migrations
  import <path> [--keep]  import a progress CSV already in storage
  cleanup                 run the housekeeping jobs once`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logging.SetBase(logging.New(cfg.App.LogLevel, os.Stderr))
	log := logging.Base()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Open(ctx, db.Options{DSN: cfg.Database.DSN, MaxConns: 2})
	if err != nil {
		log.WithError(err).Fatal("open pgx pool")
	}
	defer pool.Close()

	switch os.Args[1] {
	case "migrate":
		err = runMigrate(ctx, pool)
	case "import":
		err = runImport(ctx, cfg, pool, os.Args[2:])
	case "cleanup":
		err = runCleanup(ctx, cfg, pool)
	default:
		fmt.Fprintln(os.Stderr, usage)
		pool.Close()
		os.Exit(2)
	}
	if err != nil {
		log.WithError(err).WithField("command", os.Args[1]).Error("command failed")
		pool.Close()
		os.Exit(1)
	}
}

func runMigrate(ctx context.Context, pool *pgxpool.Pool) error {
	n, err := migrate.Run(ctx, pool)
	if err != nil {
		return err
	}
	logging.Base().WithField("applied", n).Info("migrations done")
	return nil
}

func runImport(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	keep := fs.Bool("keep", false, "keep the object in storage after importing")
	if err := fs.Parse(reorder(args)); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("import needs exactly one path")
	}

	store, err := bootstrap.OpenStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	runner := db.NewPoolRunner(pool)
	phases := domainsvc.NewDomainService(domainrepo.NewDomainRepository(runner))
	svc := projsvc.NewImportService(store, projrepo.NewPhaseRepository(runner), phases)

	report, err := svc.Import(ctx, fs.Arg(0), !*keep)
	if report != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	}
	return err
}

func runCleanup(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
	store, err := bootstrap.OpenStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	purger := notifrepo.NewNotificationRepository(db.NewPoolRunner(pool))
	return jobs.NewScheduler(purger, store).RunOnce(ctx)
}

// reorder moves flags ahead of positional arguments so "import x.csv --keep"
// parses like "import --keep x.csv".
func reorder(args []string) []string {
	var flags, rest []string
	for _, a := range args {
		if len(a) > 1 && a[0] == '-' {
			flags = append(flags, a)
			continue
		}
		rest = append(rest, a)
	}
	return append(flags, rest...)
}
