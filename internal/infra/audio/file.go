package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golf-caddie/internal/domain"
)

var audioExtensions = map[string]bool{".wav": true, ".mp3": true, ".m4a": true, ".webm": true}

// FileSource picks up recordings and .txt transcripts dropped into a directory,
// in name order. Each file is renamed with a .processed suffix once read.
type FileSource struct {
	dir       string
	once      bool
	processed map[string]bool
	mu        sync.Mutex
}

// NewFileSource polls dir for new files. With once set, NextCommand returns
// io.EOF as soon as no unprocessed file is left.
func NewFileSource(dir string, once bool) *FileSource {
	return &FileSource{
		dir:       dir,
		once:      once,
		processed: make(map[string]bool),
	}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Start(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating audio dir: %w", err)
	}
	return nil
}

func (f *FileSource) Stop() error {
	return nil
}

func (f *FileSource) NextCommand(ctx context.Context) ([]byte, error) {
	if data, err := f.checkForNewFile(); data != nil || err != nil {
		return data, err
	}
	if f.once {
		return nil, io.EOF
	}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			data, err := f.checkForNewFile()
			if err != nil {
				return nil, err
			}
			if data != nil {
				return data, nil
			}
		}
	}
}

func (f *FileSource) checkForNewFile() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !audioExtensions[ext] && ext != ".txt" {
			continue
		}

		path := filepath.Join(f.dir, entry.Name())
		if f.processed[path] {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading file %s: %w", path, err)
		}

		f.processed[path] = true
		os.Rename(path, path+".processed")

		if ext == ".txt" {
			text := strings.TrimSpace(string(data))
			if text == "" {
				continue
			}
			return []byte(domain.TextCommandPrefix + text), nil
		}
		return data, nil
	}

	return nil, nil
}
