package himawari

import (
	"context"
	"fmt"
	"sync"

	"github.com/bodgit/himawari/calibration"
	"github.com/bodgit/himawari/convert"
)

// LookupTableSize is the number of entries in a LookupTable, one per
// possible count
const LookupTableSize = calibration.Size

const chunkSize = 4096

// LookupTable maps each raw count to a greyscale intensity
type LookupTable []byte

type span struct {
	start, end int
}

func generateSpans(ctx context.Context, length, size int) (<-chan span, <-chan error) {
	out := make(chan span)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for start := 0; start < length; start += size {
			end := start + size
			if end > length {
				end = length
			}
			select {
			case out <- span{start, end}:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
	}()
	return out, errc
}

func lookupWorker(ctx context.Context, in <-chan span, table calibration.Table, c convert.Converter, lut LookupTable) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for s := range in {
			select {
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			default:
			}
			// Each span is owned by exactly one worker
			for i := s.start; i < s.end; i++ {
				lut[i] = c.Greyscale(table[i])
			}
		}
	}()
	return errc
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// BuildLookupTable maps every entry of the calibration table through the
// converter using the given number of workers
func BuildLookupTable(ctx context.Context, table calibration.Table, c convert.Converter, workers int) (LookupTable, error) {
	if len(table) != calibration.Size {
		return nil, fmt.Errorf("himawari: calibration table has %d entries, expected %d", len(table), calibration.Size)
	}
	if workers < 1 {
		workers = 1
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	lut := make(LookupTable, LookupTableSize)

	var errcList []<-chan error

	spans, errc := generateSpans(ctx, len(table), chunkSize)
	errcList = append(errcList, errc)

	for i := 0; i < workers; i++ {
		errcList = append(errcList, lookupWorker(ctx, spans, table, c, lut))
	}

	if err := waitForPipeline(errcList...); err != nil {
		return nil, err
	}

	return lut, nil
}
