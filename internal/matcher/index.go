package matcher

import (
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"
)

// GLIndex groups GL entry positions by account and date. Positions within a
// group keep input order so that scanning a group visits entries in the same
// order as scanning the full ledger would.
type GLIndex struct {
	// ByKey maps account and date to positions in Entries
	ByKey map[GroupKey][]int

	// Entries holds all indexed GL entries in input order
	Entries []*models.GLEntry
}

// GroupKey identifies the account and date a GL entry was booked on
type GroupKey struct {
	AccountID string
	Date      string
}

// IndexStats describes the shape of an index
type IndexStats struct {
	TotalEntries int
	UniqueKeys   int
	LargestGroup int
}

// NewGLIndex creates a new index over GL entries
func NewGLIndex(entries []*models.GLEntry) *GLIndex {
	index := &GLIndex{
		ByKey:   make(map[GroupKey][]int),
		Entries: entries,
	}

	for pos, entry := range entries {
		key := GroupKey{AccountID: entry.AccountID, Date: entry.Date}
		index.ByKey[key] = append(index.ByKey[key], pos)
	}

	return index
}

// Candidates returns the positions of GL entries sharing the transaction's
// account and date, in input order. Dates compare as plain strings.
func (gi *GLIndex) Candidates(txn *models.Transaction) []int {
	return gi.ByKey[GroupKey{AccountID: txn.AccountID, Date: txn.Date}]
}

// GetIndexStats returns statistics about the index
func (gi *GLIndex) GetIndexStats() IndexStats {
	stats := IndexStats{
		TotalEntries: len(gi.Entries),
		UniqueKeys:   len(gi.ByKey),
	}
	for _, positions := range gi.ByKey {
		if len(positions) > stats.LargestGroup {
			stats.LargestGroup = len(positions)
		}
	}
	return stats
}
