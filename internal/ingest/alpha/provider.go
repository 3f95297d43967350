package alpha

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// Source is the import log source tag for Alpha Progression exports.
const Source = "alpha_progression"

// Provider processes Alpha Progression CSV exports into completed sessions.
type Provider struct {
	db  *storage.DB
	log *slog.Logger
}

// NewProvider creates a new Alpha Progression ingest provider.
func NewProvider(db *storage.DB, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest parses a CSV export and stores each session that is not already
// present. A session counts as present when one with the same name started
// at the same second. Warmup sets are not recorded.
func (p *Provider) Ingest(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	start := time.Now()
	logID, logErr := p.db.InsertImportLog(ctx, storage.ImportLog{Source: Source, Status: "running"})
	if logErr != nil {
		p.log.Warn("failed to create import log", "error", logErr)
	}

	result, err := p.ingest(ctx, r)

	if logErr == nil {
		durationMs := int(time.Since(start).Milliseconds())
		entry := storage.ImportLog{Status: "success", DurationMs: &durationMs}
		if result != nil {
			entry.SessionsReceived = result.SessionsReceived
			entry.SessionsInserted = result.SessionsInserted
			entry.SetsInserted = result.SetsInserted
		}
		if err != nil {
			msg := err.Error()
			entry.Status = "error"
			entry.ErrorMessage = &msg
		}
		if uerr := p.db.UpdateImportLog(ctx, logID, entry); uerr != nil {
			p.log.Warn("failed to update import log", "id", logID, "error", uerr)
		}
	}
	return result, err
}

func (p *Provider) ingest(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	result := &ingest.Result{SessionsReceived: len(sessions)}
	exerciseIDs := make(map[string]int64)

	for _, s := range sessions {
		exists, err := p.db.SessionExists(ctx, s.Name(), s.Date)
		if err != nil {
			return result, err
		}
		if exists {
			result.SessionsSkipped++
			continue
		}

		var records []models.SetRecord
		numbers := make(map[int64]int)
		for _, ex := range s.Exercises {
			id, created, err := p.resolveExercise(ctx, exerciseIDs, ex)
			if err != nil {
				return result, err
			}
			if created {
				result.ExercisesCreated++
			}
			for _, set := range ex.Sets {
				result.SetsReceived++
				if set.Warmup {
					result.WarmupsSkipped++
					continue
				}
				numbers[id]++
				rec := models.SetRecord{
					ExerciseID: id,
					SetNumber:  numbers[id],
					Weight:     set.Weight,
					Reps:       set.Reps,
				}
				if set.RIR >= 0 {
					rir := set.RIR
					rec.Intensity = &rir
				}
				records = append(records, rec)
			}
		}

		err = p.db.WithSessionTx(ctx, func(w storage.SessionWriter) error {
			sessionID, err := w.CreateSession(ctx, models.CompletedSession{
				Name:            s.Name(),
				Date:            s.Date,
				DurationSeconds: int64(s.Duration / time.Second),
				Notes:           s.Title,
			})
			if err != nil {
				return err
			}
			for _, rec := range records {
				rec.SessionID = sessionID
				if _, err := w.CreateSetRecord(ctx, rec); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return result, fmt.Errorf("storing session %q on %s: %w", s.Name(), s.Date.Format(time.DateOnly), err)
		}
		result.SessionsInserted++
		result.SetsInserted += int64(len(records))
	}

	p.log.Info("alpha progression import",
		"sessions", result.SessionsReceived,
		"inserted", result.SessionsInserted,
		"skipped", result.SessionsSkipped,
		"sets", result.SetsInserted,
	)
	return result, nil
}

// resolveExercise finds an exercise by name, creating a custom one when the
// catalog does not know it.
func (p *Provider) resolveExercise(ctx context.Context, cache map[string]int64, ex Exercise) (int64, bool, error) {
	if id, ok := cache[ex.Name]; ok {
		return id, false, nil
	}
	existing, err := p.db.GetExerciseByName(ctx, ex.Name)
	if err == nil {
		cache[ex.Name] = existing.ID
		return existing.ID, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return 0, false, err
	}
	id, err := p.db.CreateExercise(ctx, models.Exercise{
		Name:   ex.Name,
		Type:   ex.Equipment,
		Custom: true,
	})
	if err != nil {
		return 0, false, err
	}
	p.log.Debug("created exercise from import", "name", ex.Name, "id", id)
	cache[ex.Name] = id
	return id, true, nil
}
