package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// filesystem stores objects as files under a base path, with keys mapping directly to
// relative file paths.
type filesystem struct {
	basePath string
	logger   *zap.SugaredLogger
}

// NewFilesystem creates a storage rooted at basePath, creating the directory if needed.
func NewFilesystem(basePath string, logger *zap.SugaredLogger) (Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base_path required")
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base_path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("create base_path: %w", err)
	}

	return &filesystem{
		basePath: absPath,
		logger:   logger.Named("storage"),
	}, nil
}

func (f *filesystem) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	path, err := f.fullPath(key)
	if err != nil {
		return ObjectInfo{}, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ObjectInfo{}, fmt.Errorf("create directory: %w", err)
	}

	tmpPath := path + ".tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(tmp, readerWithContext(ctx, r))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return ObjectInfo{}, fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return ObjectInfo{}, fmt.Errorf("rename temp file: %w", err)
	}

	st, err := os.Stat(path)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("stat file: %w", err)
	}

	return ObjectInfo{
		Key:          key,
		Size:         n,
		ContentType:  opt.ContentType,
		LastModified: st.ModTime(),
		Metadata:     opt.Metadata,
	}, nil
}

func (f *filesystem) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	path, err := f.fullPath(key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ObjectInfo{}, ErrNotFound
		}
		return nil, ObjectInfo{}, fmt.Errorf("open file: %w", err)
	}

	st, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, ObjectInfo{}, fmt.Errorf("stat file: %w", err)
	}
	if st.IsDir() {
		file.Close()
		return nil, ObjectInfo{}, ErrNotFound
	}

	return file, ObjectInfo{
		Key:          key,
		Size:         st.Size(),
		ContentType:  mime.TypeByExtension(filepath.Ext(path)),
		LastModified: st.ModTime(),
	}, nil
}

func (f *filesystem) Delete(ctx context.Context, key string) error {
	path, err := f.fullPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove file: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != f.basePath && strings.HasPrefix(dir, f.basePath) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			f.logger.Warnw("failed to read directory for cleanup", "dir", dir, "error", err)
			return nil
		}
		if len(entries) == 0 {
			if err := os.Remove(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
				f.logger.Warnw("failed to remove empty directory", "dir", dir, "error", err)
			}
		}
	}

	return nil
}

func (f *filesystem) fullPath(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}

	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", ErrInvalidKey
	}

	fullPath := filepath.Join(f.basePath, cleaned)
	if !strings.HasPrefix(fullPath, f.basePath+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}

	return fullPath, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}
