package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
)

// utf8BOM keeps spreadsheet tools from mangling non-ASCII cells.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSV accumulates rows and writes them as a BOM-prefixed attachment.
type CSV struct {
	buf    bytes.Buffer
	writer *csv.Writer
}

// NewCSV starts a document with the provided header row.
func NewCSV(header []string) (*CSV, error) {
	doc := &CSV{}
	doc.buf.Write(utf8BOM)
	doc.writer = csv.NewWriter(&doc.buf)
	if len(header) > 0 {
		if err := doc.writer.Write(header); err != nil {
			return nil, fmt.Errorf("write csv header: %w", err)
		}
	}
	return doc, nil
}

// AppendRow adds one record to the document.
func (c *CSV) AppendRow(row []string) error {
	if err := c.writer.Write(row); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	return nil
}

// Bytes flushes pending rows and returns the full document.
func (c *CSV) Bytes() ([]byte, error) {
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return c.buf.Bytes(), nil
}

// WriteHTTP streams the document as a download with the given filename.
func (c *CSV) WriteHTTP(w http.ResponseWriter, filename string) error {
	body, err := c.Bytes()
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(body)
	return err
}
