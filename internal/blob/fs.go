package blob

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Filesystem stores blobs under a root directory, with a small sidecar
// file per blob recording the content type.
type Filesystem struct {
	root string
}

func NewFilesystem(root string) (*Filesystem, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Filesystem{root: root}, nil
}

type fsMeta struct {
	ContentType string `json:"content_type"`
}

func (f *Filesystem) paths(key string) (data, meta string) {
	data = filepath.Join(f.root, filepath.FromSlash(key))
	return data, data + ".meta"
}

func (f *Filesystem) Put(_ context.Context, key string, r io.Reader, contentType string) (Info, error) {
	key, err := sanitizeKey(key)
	if err != nil {
		return Info{}, err
	}
	dataPath, metaPath := f.paths(key)
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return Info{}, fmt.Errorf("create blob dir: %w", err)
	}

	file, err := os.Create(dataPath)
	if err != nil {
		return Info{}, fmt.Errorf("create blob file: %w", err)
	}
	size, err := io.Copy(file, r)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dataPath)
		return Info{}, fmt.Errorf("write blob: %w", err)
	}

	metaBytes, err := json.Marshal(fsMeta{ContentType: contentType})
	if err != nil {
		return Info{}, fmt.Errorf("marshal blob meta: %w", err)
	}
	if err := os.WriteFile(metaPath, metaBytes, 0o644); err != nil {
		os.Remove(dataPath)
		return Info{}, fmt.Errorf("write blob meta: %w", err)
	}

	return Info{Key: key, Size: size, ContentType: contentType}, nil
}

func (f *Filesystem) Get(_ context.Context, key string) (Info, io.ReadCloser, error) {
	key, err := sanitizeKey(key)
	if err != nil {
		return Info{}, nil, err
	}
	dataPath, metaPath := f.paths(key)

	stat, err := os.Stat(dataPath)
	if os.IsNotExist(err) {
		return Info{}, nil, ErrNotExist
	}
	if err != nil {
		return Info{}, nil, fmt.Errorf("stat blob: %w", err)
	}

	info := Info{Key: key, Size: stat.Size()}
	if metaBytes, err := os.ReadFile(metaPath); err == nil {
		var meta fsMeta
		if json.Unmarshal(metaBytes, &meta) == nil {
			info.ContentType = meta.ContentType
		}
	}

	file, err := os.Open(dataPath)
	if err != nil {
		return Info{}, nil, fmt.Errorf("open blob: %w", err)
	}
	return info, file, nil
}

func (f *Filesystem) Delete(_ context.Context, key string) error {
	key, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	dataPath, metaPath := f.paths(key)

	if err := os.Remove(dataPath); err != nil {
		if os.IsNotExist(err) {
			return ErrNotExist
		}
		return fmt.Errorf("delete blob: %w", err)
	}
	os.Remove(metaPath)
	return nil
}
