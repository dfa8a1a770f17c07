package archive

import (
	"errors"
	"iter"
)

var errVisitCancelled = errors.New("visit cancelled")

// VisitEntries calls visitor for every entry of src in archive order.
func VisitEntries(src Source, visitor func(int, Entry) error) error {
	for i := range src.Len() {
		entry, err := src.Entry(i)
		if err != nil {
			return err
		}
		if err := visitor(i, entry); err != nil {
			return err
		}
	}
	return nil
}

// IterEntries returns an iterator over all entries in the archive.
// Iteration may panic on unrecoverable errors.
func IterEntries(src Source) iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		err := VisitEntries(src, func(i int, entry Entry) error {
			if !yield(i, entry) {
				return errVisitCancelled
			}
			return nil
		})
		if err != nil && err != errVisitCancelled {
			panic(err)
		}
	}
}
