package source

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// StreamJSONLines decodes a stream of JSON values, one record per line, and
// sends each to a channel. Blank lines are skipped.
// Both channels are closed when processing completes.
func StreamJSONLines[T any](ctx context.Context, r io.Reader) (<-chan T, <-chan error) {
	outCh := make(chan T, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		decoder := json.NewDecoder(r)
		for n := 1; ; n++ {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "jsonl: context cancelled")
				return
			}

			var item T
			err := decoder.Decode(&item)
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrapf(err, "jsonl: decode record %d", n)
				return
			}

			select {
			case outCh <- item:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "jsonl: context cancelled")
				return
			}
		}
	}()

	return outCh, errCh
}

// Collect drains a record channel and its error channel into a slice.
func Collect[T any](outCh <-chan T, errCh <-chan error) ([]T, error) {
	var out []T
	for item := range outCh {
		out = append(out, item)
	}
	for err := range errCh {
		if err != nil {
			return out, err
		}
	}
	return out, nil
}
