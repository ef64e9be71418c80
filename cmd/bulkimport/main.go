// Command bulkimport provisions accounts from a CSV file:
//
//	bulkimport -file users.csv
//
// The CSV needs name, email, password and role columns; department is
// optional. Invalid rows are skipped and reported.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/spec-kit/opsdesk-service/internal/config"
	"github.com/spec-kit/opsdesk-service/internal/observability"
	"github.com/spec-kit/opsdesk-service/internal/persistence"
	"github.com/spec-kit/opsdesk-service/internal/repository"
	"github.com/spec-kit/opsdesk-service/internal/service"
)

func main() {
	path := flag.String("file", "", "path to the users CSV file")
	flag.Parse()
	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: bulkimport -file users.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	postgres, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("postgres connection failed", zap.Error(err))
	}
	defer postgres.Close()

	file, err := os.Open(*path)
	if err != nil {
		logger.Fatal("cannot open csv", zap.String("path", *path), zap.Error(err))
	}
	defer file.Close()

	provisioning := service.NewProvisioningService(
		repository.NewUserRepository(postgres.PoolHandle()),
		cfg.Auth.BcryptCost,
		logger,
	)
	report, err := provisioning.ImportUsersCSV(ctx, file)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}

	fmt.Printf("created %d, skipped %d\n", report.Created, report.Skipped)
	for _, msg := range report.Errors {
		fmt.Println("  " + msg)
	}
	if report.Skipped > 0 {
		os.Exit(1)
	}
}
