package biglist

import (
	"context"
	"iter"
	"slices"
)

// extendChunk returns the segment size used when materialising extend
// batches, roughly 1.5x the target chunk size.
func (l *List[T]) extendChunk() int {
	return 3 * l.core.ChunkSize() / 2
}

// Extend appends every element of values.
func (l *List[T]) Extend(values []T) error {
	return l.ExtendSeq(slices.Values(values))
}

// ExtendSeq appends every element the sequence yields.
func (l *List[T]) ExtendSeq(seq iter.Seq[T]) error {
	return l.extend(context.Background(), seq)
}

// ExtendContext appends the sequence cooperatively: between segment writes
// the context is consulted, so an external scheduler can cancel a
// multi-gigabyte import. On cancellation the tail is finalised first — the
// partial segment being built is kept, the length vector and the Fenwick
// tree are patched, and the state is committed — before the context error
// propagates.
func (l *List[T]) ExtendContext(ctx context.Context, seq iter.Seq[T]) error {
	return l.extend(ctx, seq)
}

func (l *List[T]) extend(ctx context.Context, seq iter.Seq[T]) error {
	next, stop := iter.Pull(seq)
	defer stop()

	chunkExt := l.extendChunk()

	// Fill the partial tail segment in place first.
	if m := l.core.Segments(); m > 0 && l.core.SegLen(m-1) < chunkExt {
		seg, err := l.core.Chunk(m - 1)
		if err != nil {
			return err
		}
		added := 0
		drained := false
		for len(*seg) < chunkExt {
			v, ok := next()
			if !ok {
				drained = true
				break
			}
			*seg = append(*seg, v)
			added++
		}
		l.core.FenwickUpdate(m-1, added)
		l.core.IncLen(added)
		if drained {
			return l.core.Balance(m - 1)
		}
	}

	// Materialise the rest into fresh tail segments of chunkExt elements.
	for {
		batch := make([]T, 0, chunkExt)
		drained := false
		for len(batch) < chunkExt {
			v, ok := next()
			if !ok {
				drained = true
				break
			}
			batch = append(batch, v)
		}
		if len(batch) > 0 {
			if err := l.core.AppendSegment(batch); err != nil {
				return err
			}
		}
		if drained {
			return l.core.Balance(l.core.Segments() - 1)
		}
		if err := ctx.Err(); err != nil {
			// Finalise the tail before propagating the cancellation.
			if cerr := l.core.Commit(); cerr != nil {
				return cerr
			}
			return err
		}
	}
}
