package bulk

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"bulkpay/internal/models"
)

// Column names of a batch file.
const (
	ColumnIDType      = "type_id"
	ColumnIDValue     = "valeur_id"
	ColumnAmount      = "montant"
	ColumnCurrency    = "devise"
	ColumnBeneficiary = "nom_complet"
)

var RequiredColumns = []string{ColumnIDType, ColumnIDValue, ColumnAmount, ColumnCurrency, ColumnBeneficiary}

var ErrMissingColumn = errors.New("missing required column")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is one data line of a batch file keyed by header name. Columns
// missing from a short line are absent from Fields.
type Row struct {
	Line   int
	Fields map[string]string
}

// Get returns the trimmed value of column and whether it is non-blank.
func (r Row) Get(column string) (string, bool) {
	v, ok := r.Fields[column]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// RowSource yields rows in file order. Next returns io.EOF after the
// last row.
type RowSource interface {
	Next() (Row, error)
	Close() error
}

// SourceOpener opens the rows of a stored batch.
type SourceOpener interface {
	Open(job *models.BatchJob) (RowSource, error)
}

// FileOpener is a SourceOpener reading CSV files from a file store.
type FileOpener struct {
	Files interface {
		Open(path string) (io.ReadCloser, error)
	}
}

func (o FileOpener) Open(job *models.BatchJob) (RowSource, error) {
	rc, err := o.Files.Open(job.FilePath)
	if err != nil {
		return nil, err
	}
	src, err := NewCSVSource(rc)
	if err != nil {
		rc.Close()
		return nil, err
	}
	return src, nil
}

// CSVSource reads a header line and then one Row per record.
type CSVSource struct {
	reader *csv.Reader
	closer io.Closer
	header []string
}

func NewCSVSource(rc io.ReadCloser) (*CSVSource, error) {
	r := newReader(rc)
	header, err := readHeader(r)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	return &CSVSource{reader: r, closer: rc, header: header}, nil
}

func (s *CSVSource) Next() (Row, error) {
	if s.header == nil {
		return Row{}, io.EOF
	}
	record, err := s.reader.Read()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return Row{Line: perr.StartLine}, err
		}
		return Row{}, err
	}
	line, _ := s.reader.FieldPos(0)

	fields := make(map[string]string, len(s.header))
	for i, name := range s.header {
		if i < len(record) {
			fields[name] = record[i]
		}
	}
	return Row{Line: line, Fields: fields}, nil
}

func (s *CSVSource) Close() error {
	return s.closer.Close()
}

// ValidateHeader checks that the first line of r names every required
// column.
func ValidateHeader(r io.Reader) error {
	header, err := readHeader(newReader(r))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: file is empty", ErrMissingColumn)
		}
		return fmt.Errorf("failed to read header: %w", err)
	}

	present := make(map[string]bool, len(header))
	for _, name := range header {
		present[name] = true
	}
	var missing []string
	for _, name := range RequiredColumns {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

func newReader(r io.Reader) *csv.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	return cr
}

func readHeader(r *csv.Reader) ([]string, error) {
	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
	}
	return header, nil
}
