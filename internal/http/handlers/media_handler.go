package handlers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/marketplace-listings/internal/interface/http/dto"
	"github.com/ignatzorin/marketplace-listings/internal/interface/http/response"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
	"github.com/ignatzorin/marketplace-listings/internal/storage"
)

// Разрешённые типы изображений товара
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Разрешённые расширения файлов
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// MediaHandler загружает изображения товаров и отдаёт ссылки для слотов формы.
type MediaHandler struct {
	storage *storage.ImageStorage
}

// NewMediaHandler создаёт новый хэндлер.
func NewMediaHandler(storage *storage.ImageStorage) *MediaHandler {
	return &MediaHandler{storage: storage}
}

// UploadImage обрабатывает POST /media/images.
func (h *MediaHandler) UploadImage(c *gin.Context) {
	sellerID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "поле file обязательно")
		return
	}

	if file.Size == 0 {
		response.BadRequest(c, "файл не может быть пустым")
		return
	}
	if file.Size > h.storage.MaxUploadBytes() {
		response.BadRequest(c, "файл слишком большой")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		response.BadRequest(c, fmt.Sprintf("неподдерживаемый формат файла. Разрешены: %s", strings.Join(sortedKeys(allowedExtensions), ", ")))
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer src.Close()

	// Первые 512 байт достаточно для определения типа по сигнатуре
	buffer := make([]byte, 512)
	n, err := io.ReadFull(src, buffer)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "не удалось прочитать файл")
		return
	}

	kind, err := filetype.Match(buffer[:n])
	if err != nil || kind == filetype.Unknown {
		response.BadRequest(c, "не удалось определить тип файла. Разрешены только изображения")
		return
	}

	contentType := kind.MIME.Value
	if !allowedMimeTypes[contentType] {
		response.BadRequest(c, fmt.Sprintf("неподдерживаемый тип файла (%s). Разрешены: %s", contentType, strings.Join(sortedKeys(allowedMimeTypes), ", ")))
		return
	}

	if !extensionMatches(ext, kind.Extension) {
		response.BadRequest(c, fmt.Sprintf("расширение файла (%s) не соответствует реальному типу (.%s)", ext, kind.Extension))
		return
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		response.Error(c, err)
		return
	}

	relativePath, size, err := h.storage.Save(c.Request.Context(), sellerID, file.Filename, src)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			response.BadRequest(c, "файл слишком большой")
			return
		}
		response.Error(c, err)
		return
	}

	response.Created(c, dto.MediaUploadResponse{
		URL:         h.storage.URL(relativePath),
		Path:        relativePath,
		ContentType: contentType,
		Size:        size,
	})
}

// DeleteImage обрабатывает DELETE /media/images?path=...
func (h *MediaHandler) DeleteImage(c *gin.Context) {
	sellerID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	relativePath := c.Query("path")
	if relativePath == "" {
		response.BadRequest(c, "параметр path обязателен")
		return
	}

	if err := h.storage.Delete(c.Request.Context(), sellerID, relativePath); err != nil {
		if errors.Is(err, os.ErrPermission) {
			response.Error(c, apperror.ErrForbidden)
			return
		}
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// extensionMatches: .jpg и .jpeg - это одно и то же
func extensionMatches(ext, detected string) bool {
	expected := "." + detected
	if ext == expected {
		return true
	}
	jpeg := map[string]bool{".jpg": true, ".jpeg": true}
	return jpeg[ext] && jpeg[expected]
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
