package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gradle-helper/gradle-version-migration-tool/pkg/models"
)

// ReadFile reads a file and returns a File model
func ReadFile(fileInfo *models.FileInfo) (*models.File, error) {
	content, err := os.ReadFile(fileInfo.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	name := filepath.Base(fileInfo.Path)

	return &models.File{
		Path:         fileInfo.Path,
		RelativePath: fileInfo.RelativePath,
		Name:         name,
		Kind:         DetectKind(name),
		Size:         int64(len(content)),
		ModTime:      fileInfo.ModTime,
		Content:      content,
	}, nil
}

// DetectKind classifies a build file by name
func DetectKind(name string) models.ScriptKind {
	switch {
	case strings.HasSuffix(name, ".gradle.kts"):
		return models.KindKotlin
	case strings.HasSuffix(name, ".gradle"):
		return models.KindGroovy
	case strings.HasSuffix(name, ".properties"):
		return models.KindProperties
	default:
		return models.KindUnknown
	}
}

// CopyFile copies src into a new file dst with the same permissions.
// It fails with fs.ErrExist when dst is already present.
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	destFile, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := destFile.Write(data); err != nil {
		_ = destFile.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := destFile.Sync(); err != nil {
		_ = destFile.Close()
		_ = os.Remove(dst)
		return err
	}
	return destFile.Close()
}
