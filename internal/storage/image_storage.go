package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrTooLarge возвращается, если файл больше допустимого размера.
var ErrTooLarge = errors.New("storage: размер файла превышает лимит")

// ImageStorage хранит изображения товаров на диске, по каталогу на продавца.
type ImageStorage struct {
	rootPath       string
	publicURL      string
	maxUploadBytes int64
}

// NewImageStorage создаёт файловое хранилище. publicURL - префикс, под которым
// каталог rootPath раздаётся наружу.
func NewImageStorage(rootPath, publicURL string, maxUploadMB int64) (*ImageStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &ImageStorage{
		rootPath:       rootPath,
		publicURL:      strings.TrimRight(publicURL, "/"),
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// MaxUploadBytes возвращает лимит размера одного файла.
func (s *ImageStorage) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

// Save сохраняет файл и возвращает относительный путь и размер.
func (s *ImageStorage) Save(ctx context.Context, sellerID uuid.UUID, originalName string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	ext := strings.ToLower(filepath.Ext(sanitizeFilename(originalName)))
	fileName := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), uuid.NewString()[:8], ext)

	sellerDir := filepath.Join(s.rootPath, sellerID.String())
	if err := os.MkdirAll(sellerDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать каталог продавца: %w", err)
	}

	targetPath := filepath.Join(sellerDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limitedReader := io.LimitedReader{R: r, N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limitedReader)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("%w (%d байт)", ErrTooLarge, s.maxUploadBytes)
	}

	if err := f.Close(); err != nil {
		return "", 0, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return "", 0, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return path.Join(sellerID.String(), fileName), written, nil
}

// URL строит публичную ссылку на сохранённый файл.
func (s *ImageStorage) URL(relativePath string) string {
	return s.publicURL + "/" + strings.TrimLeft(filepath.ToSlash(relativePath), "/")
}

// Delete удаляет файл продавца. Пути вне каталога продавца отклоняются.
func (s *ImageStorage) Delete(ctx context.Context, sellerID uuid.UUID, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	clean := path.Clean("/" + filepath.ToSlash(relativePath))
	if !strings.HasPrefix(clean, "/"+sellerID.String()+"/") {
		return os.ErrPermission
	}

	target := filepath.Join(s.rootPath, filepath.FromSlash(clean))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "image"
	}
	return name
}
