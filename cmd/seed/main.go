package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/fishingindustry/catalog/app/config"
	"github.com/fishingindustry/catalog/app/database"
	"github.com/fishingindustry/catalog/app/seed"
)

func main() {
	file := flag.String("file", "", "Path to the .xlsx workbook with Zones, Fish and Vessels sheets")
	flag.Parse()

	if *file == "" {
		fmt.Println("Error: --file is required.")
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	wb, err := seed.LoadWorkbook(*file)
	if err != nil {
		logger.Error("failed to read workbook", "file", *file, "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg)
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	if _, err := seed.Import(db, wb, logger); err != nil {
		var rowErr *seed.RowError
		if errors.As(err, &rowErr) {
			logger.Error("invalid row", "sheet", rowErr.Sheet, "row", rowErr.Row, "fields", rowErr.Fields)
		} else {
			logger.Error("import failed", "error", err)
		}
		database.Close(db)
		os.Exit(1)
	}
}
