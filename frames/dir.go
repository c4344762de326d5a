package frames

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// DirSource replays the images of a directory in lexical order, wrapping
// around at the end. The directory is rescanned when the cursor wraps so new
// captures dropped in by another process are picked up.
type DirSource struct {
	dir string
	now func() time.Time

	mu    sync.Mutex
	files []string
	pos   int
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir, now: time.Now}
}

func (s *DirSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos >= len(s.files) {
		files, err := scanImages(s.dir)
		if err != nil {
			return Frame{}, err
		}
		s.files, s.pos = files, 0
	}
	if len(s.files) == 0 {
		return Frame{}, ErrNoFrame
	}

	path := s.files[s.pos]
	s.pos++
	data, err := os.ReadFile(path)
	if err != nil {
		return Frame{}, fmt.Errorf("read frame %s: %w", path, err)
	}
	if len(data) == 0 {
		return Frame{}, ErrNoFrame
	}
	return Frame{Data: data, MIME: mimeFor(path), CapturedAt: s.now()}, nil
}

func scanImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan frames %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func mimeFor(path string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		return t
	}
	return "image/jpeg"
}
