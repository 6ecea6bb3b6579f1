package reconcile

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ckpl/auction-ingest/internal/store"
)

// Batches splits items into consecutive chunks of at most size elements.
// A size of zero or less uses DefaultBatchSize.
func Batches[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}

// Writer sends prepared records to the store in independent batches.
type Writer struct {
	Store         store.Store
	BatchSize     int
	CheckExisting bool
	Logger        *slog.Logger
}

// Write inserts records and fills in res. A failed existence lookup or
// batch is recorded and the writer moves on to the next one.
func (w *Writer) Write(ctx context.Context, records []Record, res *Result) {
	if w.CheckExisting {
		records = w.filterExisting(ctx, records, res)
	}

	batches := Batches(records, w.BatchSize)
	for i, batch := range batches {
		br := BatchResult{Index: i + 1, Size: len(batch)}
		if err := ctx.Err(); err != nil {
			br.Err = err.Error()
			res.Failed += len(batch)
			res.Batches = append(res.Batches, br)
			res.AddErrorf("batch %d: %v", br.Index, err)
			continue
		}

		players := make([]store.NewPlayer, len(batch))
		for j, r := range batch {
			players[j] = r.Player
		}
		n, err := w.Store.InsertPlayers(ctx, players)
		if err != nil {
			br.Err = err.Error()
			res.Failed += len(batch)
			res.AddErrorf("%v: batch %d (rows %d-%d): %v", ErrWriteFailure, br.Index, batch[0].Line, batch[len(batch)-1].Line, err)
			w.Logger.Error("Batch insert failed", "batch", br.Index, "of", len(batches), "size", len(batch), "error", err)
		} else {
			br.Inserted = n
			res.Inserted += n
			w.Logger.Info("Inserted batch", "batch", br.Index, "of", len(batches), "players", n)
		}
		res.Batches = append(res.Batches, br)
	}
}

func (w *Writer) filterExisting(ctx context.Context, records []Record, res *Result) []Record {
	keep := records[:0:0]
	for _, r := range records {
		_, err := w.Store.FindPlayer(ctx, r.Player.Name, r.Player.SportID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			keep = append(keep, r)
		case err != nil:
			res.Failed++
			res.AddErrorf("%v: row %d (%s): existence check: %v", ErrWriteFailure, r.Line, r.Player.Name, err)
			w.Logger.Error("Existence check failed", "line", r.Line, "name", r.Player.Name, "error", err)
		default:
			res.Skipped = append(res.Skipped, Skipped{Line: r.Line, Name: r.Player.Name, Reason: ReasonAlreadyExists})
			w.Logger.Debug("Player already exists", "line", r.Line, "name", r.Player.Name, "sport", r.SportName)
		}
	}
	return keep
}
