package filetail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/modoterra/cursorboost/pkg/logs"
)

const chunkSize = 4096

// Provider reads the last lines of log files.
type Provider struct {
	files  []string
	tail   int
	logger *slog.Logger
}

// New creates a file tail log provider.
func New(files []string, tail int, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{files: files, tail: tail, logger: logger}
}

func (p *Provider) Name() string { return "file" }

// Collect returns one block per file, in configured order. A missing or
// unreadable file only marks its own block.
func (p *Provider) Collect(ctx context.Context) ([]logs.Block, error) {
	blocks := make([]logs.Block, 0, len(p.files))
	for _, path := range p.files {
		if err := ctx.Err(); err != nil {
			return blocks, err
		}
		b := logs.Block{Source: logs.SourceFile, Name: path}
		text, err := Tail(path, p.tail)
		if err != nil {
			p.logger.Warn("log file tail failed", "path", path, "err", err)
			b.Err = err
		} else {
			b.Text = text
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// Tail returns the last n lines of the file at path. It reads backwards from
// the end so large files are not loaded whole.
func Tail(path string, n int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if n <= 0 || info.Size() == 0 {
		return "", nil
	}

	var (
		buf    []byte
		offset = info.Size()
	)
	// One extra newline is needed when the file ends with one.
	for offset > 0 && bytes.Count(buf, []byte{'\n'}) <= n {
		size := int64(chunkSize)
		if offset < size {
			size = offset
		}
		offset -= size
		chunk := make([]byte, size)
		if _, err := f.ReadAt(chunk, offset); err != nil && err != io.EOF {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		buf = append(chunk, buf...)
	}

	trailing := bytes.HasSuffix(buf, []byte{'\n'})
	body := bytes.TrimSuffix(buf, []byte{'\n'})
	lines := bytes.Split(body, []byte{'\n'})
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	out := bytes.Join(lines, []byte{'\n'})
	if trailing {
		out = append(out, '\n')
	}
	return string(out), nil
}
