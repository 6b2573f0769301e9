package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
)

const (
	defaultExportRows = 10000
	flushEvery        = 500
)

// ExportService streams the synthetic item export in several formats. Rows
// are generated on the fly; nothing is buffered beyond the writer's buffer.
type ExportService struct {
	rows int
}

func NewExportService(rows int) *ExportService {
	if rows <= 0 {
		rows = defaultExportRows
	}
	return &ExportService{rows: rows}
}

type exportRow struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func rowName(i int) string { return "Item " + strconv.Itoa(i) }

// WriteCSV writes an "id,name" header followed by one record per row.
func (s *ExportService) WriteCSV(ctx context.Context, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "name"}); err != nil {
		return err
	}
	for i := 1; i <= s.rows; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := cw.Write([]string{strconv.Itoa(i), rowName(i)}); err != nil {
			return err
		}
		if i%flushEvery == 0 {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
			flush(w)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteText streams the same "id,name" body as WriteCSV; only the media type
// chosen by the caller differs.
func (s *ExportService) WriteText(ctx context.Context, w io.Writer) error {
	return s.WriteCSV(ctx, w)
}

// WriteJSON writes a single JSON array without materialising it in memory.
func (s *ExportService) WriteJSON(ctx context.Context, w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("["); err != nil {
		return err
	}
	for i := 1; i <= s.rows; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 1 {
			if err := bw.WriteByte(','); err != nil {
				return err
			}
		}
		b, err := json.Marshal(exportRow{ID: i, Name: rowName(i)})
		if err != nil {
			return err
		}
		if _, err := bw.Write(b); err != nil {
			return err
		}
		if i%flushEvery == 0 {
			if err := bw.Flush(); err != nil {
				return err
			}
			flush(w)
		}
	}
	if _, err := bw.WriteString("]"); err != nil {
		return err
	}
	return bw.Flush()
}

// flusher is implemented by streaming response writers.
type flusher interface {
	Flush()
}

func flush(w io.Writer) {
	if f, ok := w.(flusher); ok {
		f.Flush()
	}
}
