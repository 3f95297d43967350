// Package importer bulk-loads a directory of Alpha Progression CSV exports.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/ingest/alpha"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	ingest.Result
}

// Ingester stores one export file.
type Ingester interface {
	Ingest(ctx context.Context, r io.Reader) (*ingest.Result, error)
}

// Importer reads every .csv file in a directory and hands it to an Ingester.
type Importer struct {
	ingester Ingester
	log      *slog.Logger
	dryRun   bool
	stats    Stats
}

// New creates a new Importer. In dry-run mode files are parsed and counted
// but nothing is written.
func New(ingester Ingester, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{ingester: ingester, log: log, dryRun: dryRun}
}

// Import processes the .csv files under dir in name order. A file that
// fails to parse is counted and skipped; a storage error aborts the run.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	files, err := csvFiles(dir)
	if err != nil {
		return &imp.stats, err
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &imp.stats, err
		}
		if err := imp.importFile(ctx, f); err != nil {
			return &imp.stats, fmt.Errorf("importing %s: %w", filepath.Base(f), err)
		}
	}
	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, path string) error {
	if imp.dryRun {
		return imp.countFile(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	res, err := imp.ingester.Ingest(ctx, file)
	if err != nil {
		if res == nil {
			// nothing stored: the file itself is bad
			imp.log.Warn("parse failed", "file", path, "error", err)
			imp.stats.FilesErrored++
			return nil
		}
		return err
	}
	if res.SessionsReceived == 0 {
		imp.stats.FilesSkipped++
		return nil
	}
	imp.stats.FilesProcessed++
	imp.stats.Add(res)
	imp.log.Info("imported file", "file", filepath.Base(path),
		"sessions", res.SessionsInserted, "duplicates", res.SessionsSkipped)
	return nil
}

func (imp *Importer) countFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	sessions, err := alpha.Parse(file)
	if err != nil {
		imp.log.Warn("parse failed", "file", path, "error", err)
		imp.stats.FilesErrored++
		return nil
	}
	if len(sessions) == 0 {
		imp.stats.FilesSkipped++
		return nil
	}
	imp.stats.FilesProcessed++
	imp.stats.SessionsReceived += len(sessions)
	for _, s := range sessions {
		for _, ex := range s.Exercises {
			for _, set := range ex.Sets {
				imp.stats.SetsReceived++
				if set.Warmup {
					imp.stats.WarmupsSkipped++
				}
			}
		}
	}
	return nil
}

func csvFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
