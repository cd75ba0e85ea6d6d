package history

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/megasena/internal/domain"
)

// csvColumns is contest, date and the six numbers
const csvColumns = 2 + domain.PickSize

var csvDateLayouts = []string{"2006-01-02", "02/01/2006"}

// LineError reports an invalid row of an imported dataset.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// ParseCSV reads draws from r. Rows are contest,date,n1..n6 separated by commas
// or semicolons; the delimiter is taken from the first line. A header row is
// skipped when its first column is not a number. The date column may be empty.
func ParseCSV(r io.Reader) ([]domain.Draw, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var draws []domain.Draw
	first := true

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, &LineError{Line: parseErr.Line, Err: fmt.Errorf("%w: %v", domain.ErrInvalidDraw, parseErr.Err)}
			}
			return nil, fmt.Errorf("failed to read dataset: %w", err)
		}

		line, _ := reader.FieldPos(0)

		if first {
			first = false
			if isHeader(record) {
				continue
			}
		}

		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}

		draw, err := parseRecord(record)
		if err != nil {
			return nil, &LineError{Line: line, Err: err}
		}
		draws = append(draws, draw)
	}

	return draws, nil
}

// isHeader reports whether a first row is a header: none of the number
// columns parse as integers. A data row with a typo still fails with its line.
func isHeader(record []string) bool {
	for i := 2; i < len(record) && i < 2+domain.PickSize; i++ {
		if _, err := strconv.Atoi(strings.TrimSpace(record[i])); err == nil {
			return false
		}
	}
	return true
}

// ParseCSVFile opens path and parses it with ParseCSV.
func ParseCSVFile(path string) ([]domain.Draw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer f.Close()

	draws, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return draws, nil
}

func parseRecord(record []string) (domain.Draw, error) {
	if len(record) != csvColumns {
		return domain.Draw{}, fmt.Errorf("%w: expected %d columns, got %d", domain.ErrInvalidDraw, csvColumns, len(record))
	}

	contest, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil {
		return domain.Draw{}, fmt.Errorf("%w: contest %q is not a number", domain.ErrInvalidDraw, record[0])
	}

	date, err := parseDrawDate(strings.TrimSpace(record[1]))
	if err != nil {
		return domain.Draw{}, err
	}

	numbers := make([]int, domain.PickSize)
	for i, field := range record[2:] {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return domain.Draw{}, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidDraw, field)
		}
		numbers[i] = n
	}

	combination, err := domain.NewCombination(numbers...)
	if err != nil {
		return domain.Draw{}, err
	}

	draw := domain.Draw{Contest: contest, Date: date, Numbers: combination}
	if err := draw.Validate(); err != nil {
		return domain.Draw{}, err
	}
	return draw, nil
}

func parseDrawDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised date %q", domain.ErrInvalidDraw, s)
}

// detectDelimiter picks ';' when the first line has more semicolons than commas.
func detectDelimiter(data []byte) rune {
	firstLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}
	if bytes.Count(firstLine, []byte{';'}) > bytes.Count(firstLine, []byte{','}) {
		return ';'
	}
	return ','
}
