package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/CTAG07/Libation/pkg/dataset"
)

// openStore opens the SQLite file at path read-only. A missing file is
// reported as an error wrapping fs.ErrNotExist; the store is optional, so the
// caller decides how loudly to complain.
func openStore(ctx context.Context, path string) (*dataset.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("no database configured: %w", fs.ErrNotExist)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat database: %w", err)
	}

	db, err := initDB("file:" + path + "?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	store, err := dataset.NewStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	// Ping does not touch the file, so read the schema to catch a corrupt one.
	var tables int
	if err = db.QueryRowContext(ctx, `SELECT count(*) FROM sqlite_master`).Scan(&tables); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to read database: %w", err)
	}
	return store, nil
}

func datasetOptions(config *Config) dataset.Options {
	return dataset.Options{NameColumn: config.Data.NameColumn}
}

// loadIndex loads the dataset and builds the index the handlers serve from.
// It never fails: every loading problem degrades to an empty dataset. store
// may be nil.
func loadIndex(ctx context.Context, config *Config, logger *slog.Logger, store *dataset.Store) *dataset.Index {
	opts := datasetOptions(config)

	ds, err := dataset.LoadCSV(config.Data.CSVPath, opts)
	switch {
	case errors.Is(err, dataset.ErrMissingDataset):
		logger.Warn("Dataset file not found, serving without data", "path", config.Data.CSVPath)
	case err != nil:
		logger.Error("Failed to load dataset, serving without data", "path", config.Data.CSVPath, "error", err)
		ds = nil
	default:
		logger.Info("Loaded dataset", "path", config.Data.CSVPath, "records", len(ds.Records))
		if ds.Skipped > 0 {
			logger.Debug("Skipped malformed rows", "path", config.Data.CSVPath, "count", ds.Skipped)
		}
	}

	if (ds == nil || len(ds.Records) == 0) && config.Data.DatabaseFallback && store != nil {
		dbDataset, dbErr := store.Dataset(ctx, config.Data.DatabaseTable, opts)
		if dbErr != nil {
			logger.Error("Failed to load dataset from database", "table", config.Data.DatabaseTable, "error", dbErr)
		} else {
			logger.Info("Loaded dataset from database", "table", config.Data.DatabaseTable, "records", len(dbDataset.Records))
			ds = dbDataset
		}
	}

	index := dataset.NewIndex(ds)
	if names := unlinkableNames(index); len(names) > 0 {
		logger.Warn("Names without a slug have no detail page", "names", names)
	}
	if index.Len() > 0 {
		for _, c := range config.Categories {
			if !index.HasColumn(c.Column) {
				logger.Warn("Category column is not in the dataset", "category", c.Slug, "column", c.Column)
			}
		}
	}
	return index
}

// slugCollisions returns, for each slug claimed by more than one name, the
// names in canonical order. Only the last-loaded name is reachable.
func slugCollisions(index *dataset.Index) map[string][]string {
	bySlug := make(map[string][]string)
	for _, name := range index.Order() {
		slug := dataset.Slugify(name)
		bySlug[slug] = append(bySlug[slug], name)
	}
	for slug, names := range bySlug {
		if len(names) < 2 {
			delete(bySlug, slug)
		}
	}
	return bySlug
}

// unlinkableNames returns, in canonical order, the names whose slug is empty.
// No URL reaches them.
func unlinkableNames(index *dataset.Index) []string {
	var names []string
	for _, name := range index.Order() {
		if dataset.Slugify(name) == "" {
			names = append(names, name)
		}
	}
	return names
}
