package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"contactbook/contact"
	"contactbook/pkg/config"
	"contactbook/pkg/logger"
	"contactbook/pkg/storage"
)

type importResult struct {
	Imported int
	Skipped  int
}

func main() {
	var (
		csvPath string
		limit   int
	)

	flag.StringVar(&csvPath, "csv", "", "Path to a CSV with name,email (or nombre,mail) columns")
	flag.IntVar(&limit, "limit", 0, "Limit number of rows to import (0 = all)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if csvPath == "" {
		slog.Error("missing -csv")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	repo, closeFn, err := storage.Open(ctx, cfg, logger.NOOPLogger)
	if err != nil {
		slog.Error("cannot open storage", "error", err)
		os.Exit(1)
	}
	defer closeFn()

	svc := contact.NewUsecase(repo)
	if _, err := svc.LoadContacts(ctx); err != nil {
		slog.Warn("existing contacts could not be read", "error", err)
	}

	file, err := os.Open(csvPath)
	if err != nil {
		slog.Error("cannot open csv", "error", err)
		os.Exit(1)
	}
	defer file.Close()

	res, err := importContacts(ctx, svc, file, limit)
	if err != nil {
		slog.Error("import failed", "error", err, "imported", res.Imported)
		os.Exit(1)
	}

	slog.Info("import completed", "imported", res.Imported, "skipped", res.Skipped)
}

// importContacts adds every row through svc so each one is validated.
// Invalid rows are skipped; a storage failure stops the import.
func importContacts(ctx context.Context, svc contact.Service, r io.Reader, limit int) (importResult, error) {
	var res importResult

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	idxName, idxEmail, err := parseContactCSVHeader(reader)
	if err != nil {
		return res, err
	}

	for limit <= 0 || res.Imported < limit {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, err
		}
		if idxName >= len(record) || idxEmail >= len(record) {
			res.Skipped++
			continue
		}

		_, err = svc.AddContact(ctx, contact.Contact{Name: record[idxName], Email: record[idxEmail]})
		switch {
		case err == nil:
			res.Imported++
		case contact.IsStorageWriteError(err):
			return res, err
		default:
			slog.Debug("skipping row", "name", record[idxName], "reason", err)
			res.Skipped++
		}
	}

	return res, nil
}

func parseContactCSVHeader(reader *csv.Reader) (int, int, error) {
	header, err := reader.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read csv header: %w", err)
	}

	idxName, idxEmail := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "name", "nombre":
			idxName = i
		case "email", "mail":
			idxEmail = i
		}
	}
	if idxName == -1 || idxEmail == -1 {
		return 0, 0, errors.New("missing required columns in csv header")
	}

	return idxName, idxEmail, nil
}
