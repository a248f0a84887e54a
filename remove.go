package overlay

import (
	"fmt"
	"log/slog"

	"github.com/meigma/overlay/internal/index"
	"github.com/meigma/overlay/internal/layout"
)

// Remove detaches id from target and compacts the remaining blocks.
//
// Surviving blocks are packed, in offset order, directly after the host
// content, so the file shrinks by exactly the removed block and its table
// record. Listing order is unchanged. With RemoveWithOutput the result is
// written to a new file and target is left untouched.
func (e *Editor) Remove(target, id string, opts ...RemoveOption) error {
	var cfg removeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	f, c, err := e.open(target)
	if err != nil {
		return err
	}
	defer f.Close()

	survivors, removed, err := c.Table.Remove(id)
	if err != nil {
		return fmt.Errorf("remove %q: %w", id, err)
	}
	moves, table, err := compact(c.BaseLength, survivors)
	if err != nil {
		return fmt.Errorf("remove %q: %w", id, err)
	}

	dest := target
	if cfg.output != "" {
		dest = cfg.output
	}
	for _, m := range moves[1:] {
		e.logger.Debug("compaction move",
			slog.Uint64("from", m.from),
			slog.Uint64("to", m.to),
			slog.Uint64("length", m.length))
	}

	if err := e.commit(f, target, dest, rewrite{moves: moves, table: table}); err != nil {
		return fmt.Errorf("remove %q: %w", id, err)
	}
	e.logger.Info("removed resource",
		slog.String("target", target),
		slog.String("dest", dest),
		slog.String("id", id),
		slog.Uint64("freed", removed.StoredLength+uint64(layout.RecordSize(removed))),
		slog.Int("remaining", table.Len()))
	return nil
}

// compact plans the relocation of the table's blocks so they tile the file
// from base with no gaps. The first move always copies the host content.
// The returned table has updated offsets and keeps insertion order.
func compact(base uint64, table *index.Table) ([]move, *index.Table, error) {
	moves := []move{{from: 0, to: 0, length: base}}
	sorted := table.ByOffset()
	next := base
	for i, e := range sorted {
		moves = append(moves, move{from: e.DataOffset, to: next, length: e.StoredLength})
		sorted[i].DataOffset = next
		next += e.StoredLength
	}
	relocated, err := table.WithEntries(sorted)
	if err != nil {
		return nil, nil, err
	}
	return moves, relocated, nil
}
