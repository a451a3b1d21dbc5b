package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/grrdistribution/barrel-ledger/internal/config"
	"github.com/grrdistribution/barrel-ledger/internal/report"
	"github.com/grrdistribution/barrel-ledger/internal/repository"
	"github.com/grrdistribution/barrel-ledger/internal/services"
	"github.com/grrdistribution/barrel-ledger/pkg/logger"
	"github.com/grrdistribution/barrel-ledger/pkg/pg"
)

// Usage:
//
//	cli migrate --env=.env --dir=./migrations
//	cli export --report=dormancy --out=report.xlsx
//	cli export --report=all-data --out=data.xlsx
//	cli export --report=town --town=Matara --out=matara.xlsx
//	cli export --report=customer --customer="ACME" --out=acme.xlsx
func main() {
	err := config.Load(getEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
	}

	switch command() {
	case "export":
		runExport()
	default:
		runMigrate()
	}
}

func runMigrate() {
	pgConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}
	err := pg.Migrate(pgConf, getMigrationPath())
	if err != nil {
		logger.Error("migration: error running migrations", "error", err)
	}
}

func runExport() {
	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	db, err := pg.CreateReadWrite(readConf, readConf, false)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	recordRepo := repository.NewBarrelRecordRepository(db)
	svc := services.NewLedgerService(recordRepo, config.Get().DormancyDefaultGapDays)
	ctx := context.Background()

	var f *excelize.File
	switch flagValue("--report") {
	case "dormancy":
		c, err := svc.ClassifyDormancy(ctx, time.Time{}, 0)
		if err != nil {
			logger.Error("export: classify failed", "error", err)
			return
		}
		f, err = report.NoTransaction(c)
		if err != nil {
			logger.Error("export: render failed", "error", err)
			return
		}
	case "all-data":
		records, err := svc.All(ctx)
		if err != nil {
			logger.Error("export: fetch failed", "error", err)
			return
		}
		f, err = report.CompleteData(records)
		if err != nil {
			logger.Error("export: render failed", "error", err)
			return
		}
	case "town":
		town := flagValue("--town")
		if town == "" {
			logger.Error("export: --town is required for the town report")
			return
		}
		records, err := svc.TownReport(ctx, town)
		if err != nil {
			logger.Error("export: fetch failed", "error", err)
			return
		}
		f, err = report.Town(town, records)
		if err != nil {
			logger.Error("export: render failed", "error", err)
			return
		}
	case "customer":
		name := flagValue("--customer")
		if name == "" {
			logger.Error("export: --customer is required for the customer report")
			return
		}
		records, err := svc.CustomerHistory(ctx, name)
		if err != nil {
			logger.Error("export: fetch failed", "error", err)
			return
		}
		f, err = report.CustomerHistory(name, records)
		if err != nil {
			logger.Error("export: render failed", "error", err)
			return
		}
	default:
		logger.Error("export: unknown report, expected dormancy, all-data, town or customer")
		return
	}

	out := flagValue("--out")
	if out == "" {
		out = "report.xlsx"
	}
	if err := f.SaveAs(out); err != nil {
		logger.Error("export: failed writing workbook", "error", err)
		return
	}
	logger.Info("export: workbook written", "path", out)
}

func getEnvPath() string {
	if p := flagValue("--env"); p != "" {
		if _, err := os.Open(p); err != nil {
			logger.Error("failed to open the passed env file, got error" + err.Error())
			return ""
		}
		return p
	}
	if _, err := os.Open(".env"); err != nil {
		return ""
	}
	return ".env"
}

func getMigrationPath() string {
	if p := flagValue("--dir"); p != "" {
		if _, err := os.Open(p); err != nil {
			logger.Error("failed to open the passed migrations dir, got error" + err.Error())
			return ""
		}
		return p
	}
	return config.Get().MigrationsDir
}

func command() string {
	for _, v := range os.Args[1:] {
		if !strings.HasPrefix(v, "--") {
			return v
		}
	}
	return ""
}

func flagValue(name string) string {
	for _, v := range os.Args {
		if strings.HasPrefix(v, name+"=") {
			return strings.TrimPrefix(v, name+"=")
		}
	}
	return ""
}
