package adapters

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// FileRepository implements ports.Repository on a plain text file, one URL
// per line. The file format is user-editable, so blank lines are tolerated.
type FileRepository struct {
	path string
}

// NewFileRepository creates a new FileRepository for the given file path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: path,
	}
}

// List returns every URL in file order. A missing file is an empty list.
func (r *FileRepository) List() ([]string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read urls file: %w", err)
	}

	urls := []string{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			urls = append(urls, line)
		}
	}
	return urls, nil
}

// Add appends a URL to the file.
func (r *FileRepository) Add(url string) error {
	urls, err := r.List()
	if err != nil {
		return err
	}
	urls = append(urls, url)
	return r.write(urls)
}

// Remove deletes every URL containing the pattern and returns the removed
// URLs, in file order.
func (r *FileRepository) Remove(pattern string) ([]string, error) {
	urls, err := r.List()
	if err != nil {
		return nil, err
	}

	kept := []string{}
	removed := []string{}
	for _, url := range urls {
		if strings.Contains(url, pattern) {
			removed = append(removed, url)
		} else {
			kept = append(kept, url)
		}
	}

	if len(removed) > 0 {
		if err := r.write(kept); err != nil {
			return nil, err
		}
	}
	return removed, nil
}

func (r *FileRepository) write(urls []string) error {
	content := strings.Join(urls, "\n")
	if content != "" {
		content += "\n"
	}
	if err := os.WriteFile(r.path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write urls file: %w", err)
	}
	return nil
}
