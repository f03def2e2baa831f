package fasta

import (
	"context"
	"runtime"
	"sync"

	"github.com/ShenghuiXue/bioinformatics-hub/alphabet"
)

// Check validates every record of idx against the alphabet of its kind
// using numWorker goroutines, and returns the ids of invalid records in
// index order. If numWorker is not positive, the number of CPU is used.
//
// The result is the same as idx.Invalid(). Check stops early and returns
// the context error if ctx is cancelled.
func Check(ctx context.Context, idx *Index, numWorker int) ([]string, error) {

	if numWorker <= 0 {
		numWorker = runtime.NumCPU()
	}

	records := idx.Records()
	invalid := make([]bool, len(records))
	positions := make(chan int, 100)

	var wg sync.WaitGroup
	wg.Add(numWorker)

	for nWorker := 0; nWorker < numWorker; nWorker++ {

		go func() {

			defer wg.Done()

			for i := range positions {

				select {
				case <-ctx.Done():
					return
				default:
				}
				// each worker owns the positions it receives
				invalid[i] = !alphabet.IsValid(records[i].Sequence, idx.kind)
			}
		}()
	}

Loop:
	for i := range records {
		select {
		case <-ctx.Done():
			break Loop
		case positions <- i:
		}
	}
	close(positions)

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ids []string
	for i, bad := range invalid {
		if bad {
			ids = append(ids, records[i].ID)
		}
	}
	return ids, nil
}
