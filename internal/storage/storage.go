package storage

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/yukikurage/task-colab-api/internal/models"
)

// URLPrefix is the route under which stored files are served.
const URLPrefix = "/uploads"

// Store persists uploaded submission archives.
type Store interface {
	Save(folder string, fileHeader *multipart.FileHeader) (models.SubmissionFile, error)
	Remove(file models.SubmissionFile) error
}

// LocalStore keeps files on the local disk under Dir.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{
		Dir:     dir,
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Save copies the upload to Dir/folder under a random name and returns its metadata.
func (s *LocalStore) Save(folder string, fileHeader *multipart.FileHeader) (file models.SubmissionFile, err error) {
	uploadDir := filepath.Join(s.Dir, folder)
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return models.SubmissionFile{}, fmt.Errorf("failed to create upload directory: %w", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return models.SubmissionFile{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	storedName := uuid.NewString() + ext

	storedPath := filepath.Join(uploadDir, storedName)
	dst, err := os.Create(storedPath)
	if err != nil {
		return models.SubmissionFile{}, fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", closeErr)
		}
		if err != nil {
			os.Remove(storedPath)
			file = models.SubmissionFile{}
		}
	}()

	written, err := io.Copy(dst, src)
	if err != nil {
		return models.SubmissionFile{}, fmt.Errorf("failed to write file: %w", err)
	}

	return models.SubmissionFile{
		Name:     filepath.Base(fileHeader.Filename),
		URL:      s.BaseURL + path.Join(URLPrefix, filepath.ToSlash(folder), storedName),
		Size:     written,
		MimeType: DetectMimeType(fileHeader),
	}, nil
}

// Remove deletes a file previously returned by Save.
func (s *LocalStore) Remove(file models.SubmissionFile) error {
	rel := strings.TrimPrefix(file.URL, s.BaseURL)
	rel = strings.TrimPrefix(rel, URLPrefix+"/")
	if rel == "" || strings.Contains(rel, "..") {
		return fmt.Errorf("refusing to remove %q", file.URL)
	}
	if err := os.Remove(filepath.Join(s.Dir, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// DetectMimeType sniffs the upload's content. Formats built on ZIP (jar, docx
// and the like) report as application/zip. The declared Content-Type and file
// extension are ignored.
func DetectMimeType(fileHeader *multipart.FileHeader) string {
	src, err := fileHeader.Open()
	if err != nil {
		return "application/octet-stream"
	}
	defer src.Close()

	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return "application/octet-stream"
	}
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return "application/zip"
		}
	}
	mediaType, _, err := mime.ParseMediaType(detected.String())
	if err != nil {
		return detected.String()
	}
	return mediaType
}
