package history

import (
	"context"

	"github.com/aristath/megasena/internal/domain"
)

// Source supplies draws to be merged into the draw repository on reload.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Draw, error)
}

// FileSource reads a CSV dataset from the local filesystem.
type FileSource struct {
	Path string
}

// Name identifies the source in logs.
func (s FileSource) Name() string {
	return "file:" + s.Path
}

// Fetch parses the CSV file.
func (s FileSource) Fetch(ctx context.Context) ([]domain.Draw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ParseCSVFile(s.Path)
}
