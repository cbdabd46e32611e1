package fetcher

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

// StreamCSVRecords reads a headed CSV and sends each data row as a
// header-keyed map. The caller must drain the row channel; both channels
// close when processing completes. Rows shorter than the header are padded
// with empty strings, never errors.
func StreamCSVRecords(ctx context.Context, r io.Reader) (<-chan map[string]string, <-chan error) {
	rowCh := make(chan map[string]string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true

		header, err := reader.Read()
		if err == io.EOF {
			return
		}
		if err != nil {
			errCh <- eris.Wrap(err, "csv: read header")
			return
		}

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			row := make(map[string]string, len(header))
			for i, col := range header {
				if i < len(record) {
					row[col] = record[i]
				} else {
					row[col] = ""
				}
			}

			select {
			case rowCh <- row:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}
