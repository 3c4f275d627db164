package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// DefaultBatchSize is the number of data rows per batch when none is given.
const DefaultBatchSize = 10000

// Record is one raw CSV row that passed field-count validation.
type Record struct {
	Line   int   // 1-based line in the source
	Seq    int64 // arrival order among well-formed rows
	Fields []string
}

// Batch is a bounded run of consecutive source rows.
type Batch struct {
	Index    int
	Records  []Record
	Rejected []ParseError
}

// Reader yields fixed-size batches from a CSV source. It holds at most one
// batch in memory and cannot be restarted.
type Reader struct {
	cr        *csv.Reader
	header    Header
	batchSize int
	index     int
	seq       int64
	done      bool
}

// NewReader reads the header row from r and prepares batched reading.
func NewReader(r io.Reader, batchSize int) (*Reader, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	cr := csv.NewReader(r)
	// FieldsPerRecord stays 0: the header fixes the expected width.
	raw, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Reason: "file has no header row"}
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	return &Reader{
		cr:        cr,
		header:    NewHeader(raw),
		batchSize: batchSize,
	}, nil
}

// Header returns the normalized header row.
func (r *Reader) Header() Header { return r.header }

// Next returns the next batch, or io.EOF once the source is exhausted.
// Rows with the wrong number of fields or broken quoting are recorded in
// Batch.Rejected and never abort the batch.
func (r *Reader) Next(ctx context.Context) (*Batch, error) {
	if r.done {
		return nil, io.EOF
	}

	b := &Batch{Index: r.index}
	for len(b.Records)+len(b.Rejected) < r.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fields, err := r.cr.Read()
		if errors.Is(err, io.EOF) {
			r.done = true
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, fmt.Errorf("reading CSV: %w", err)
			}
			line := pe.StartLine
			if line == 0 {
				line = pe.Line
			}
			b.Rejected = append(b.Rejected, ParseError{Line: line, Reason: pe.Err.Error()})
			continue
		}

		line, _ := r.cr.FieldPos(0)
		b.Records = append(b.Records, Record{Line: line, Seq: r.seq, Fields: fields})
		r.seq++
	}

	if len(b.Records) == 0 && len(b.Rejected) == 0 {
		return nil, io.EOF
	}
	r.index++
	return b, nil
}
