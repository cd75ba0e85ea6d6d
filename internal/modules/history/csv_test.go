package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aristath/megasena/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV_WithHeader(t *testing.T) {
	input := `contest,date,n1,n2,n3,n4,n5,n6
1,1996-03-11,41,5,4,52,30,33
2,1996-03-18,9,39,37,49,43,41
`
	draws, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, draws, 2)

	assert.Equal(t, 1, draws[0].Contest)
	assert.Equal(t, domain.MustCombination(4, 5, 30, 33, 41, 52), draws[0].Numbers)
	assert.Equal(t, time.Date(1996, time.March, 11, 0, 0, 0, 0, time.UTC), draws[0].Date)
}

func TestParseCSV_LocalizedHeader(t *testing.T) {
	input := "Concurso;Data Sorteio;Bola1;Bola2;Bola3;Bola4;Bola5;Bola6\n1;11/03/1996;4;5;30;33;41;52\n"

	draws, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, draws, 1)
	assert.Equal(t, 1, draws[0].Contest)
}

func TestParseCSV_SemicolonAndBrazilianDates(t *testing.T) {
	input := "1;11/03/1996;4;5;30;33;41;52\n2;18/03/1996;9;37;39;41;43;49\n"

	draws, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, draws, 2)
	assert.Equal(t, time.Date(1996, time.March, 18, 0, 0, 0, 0, time.UTC), draws[1].Date)
}

func TestParseCSV_EmptyDate(t *testing.T) {
	draws, err := ParseCSV(strings.NewReader("7,,1,2,3,4,5,6\n"))
	require.NoError(t, err)
	require.Len(t, draws, 1)
	assert.True(t, draws[0].Date.IsZero())
}

func TestParseCSV_SkipsBlankLinesAndComments(t *testing.T) {
	input := "# exported dataset\n1,,1,2,3,4,5,6\n\n2,,7,8,9,10,11,12\n"

	draws, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, draws, 2)
}

func TestParseCSV_InvalidRowsReportLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		line    int
		wantErr error
	}{
		{
			name:    "out of range",
			input:   "contest,date,n1,n2,n3,n4,n5,n6\n1,,1,2,3,4,5,6\n2,,1,2,3,4,5,61\n",
			line:    3,
			wantErr: domain.ErrOutOfRange,
		},
		{
			name:    "duplicate number",
			input:   "1,,1,2,3,4,5,5\n",
			line:    1,
			wantErr: domain.ErrInvalidDraw,
		},
		{
			name:    "missing column",
			input:   "1,,1,2,3,4,5\n",
			line:    1,
			wantErr: domain.ErrInvalidDraw,
		},
		{
			name:    "bad number",
			input:   "1,,1,2,3,4,5,x\n",
			line:    1,
			wantErr: domain.ErrInvalidDraw,
		},
		{
			name:    "bad date",
			input:   "1,11-03-1996,1,2,3,4,5,6\n",
			line:    1,
			wantErr: domain.ErrInvalidDraw,
		},
		{
			name:    "typo in first contest",
			input:   "1O,2020-01-01,1,2,3,4,5,6\n2,2020-01-04,7,8,9,10,11,12\n",
			line:    1,
			wantErr: domain.ErrInvalidDraw,
		},
		{
			name:    "non-positive contest",
			input:   "1,,1,2,3,4,5,6\n0,,1,2,3,4,5,7\n",
			line:    2,
			wantErr: domain.ErrInvalidDraw,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var lineErr *LineError
			require.ErrorAs(t, err, &lineErr)
			assert.Equal(t, tt.line, lineErr.Line)
		})
	}
}

func TestParseCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draws.csv")
	require.NoError(t, os.WriteFile(path, []byte("1,1996-03-11,4,5,30,33,41,52\n"), 0644))

	draws, err := ParseCSVFile(path)
	require.NoError(t, err)
	assert.Len(t, draws, 1)

	_, err = ParseCSVFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
