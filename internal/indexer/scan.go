package indexer

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dshills/jscontext-mcp/internal/config"
	"github.com/dshills/jscontext-mcp/pkg/types"
)

// TruncatedMarker is appended to file content cut at max_file_chars
const TruncatedMarker = "\n// ... truncated"

// RootModule is the module name given to files directly under the project root
const RootModule = "root"

var (
	ErrOutsideRoot     = errors.New("file is outside the project root")
	ErrUnsupportedFile = errors.New("file extension is not indexed")
)

// SourceFile is a discovered file ready for preprocessing
type SourceFile struct {
	types.FileInput
	AbsPath string
	Hash    [32]byte // SHA-256 of the raw file bytes, before truncation
	Size    int64
}

// ScanFiles walks root and returns every non-empty file with a configured
// extension, skipping ignored directories and glob matches. Unreadable
// entries are skipped. Results are ordered by relative path.
func ScanFiles(root string, cfg config.ProjectConfig) ([]SourceFile, error) {
	files := make([]SourceFile, 0)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if cfg.IgnoresDir(d.Name()) || cfg.IgnoresPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks and special files are not followed
		if !d.Type().IsRegular() {
			return nil
		}
		if !cfg.HasExtension(filepath.Ext(path)) || cfg.IgnoresPath(rel) {
			return nil
		}

		file, err := readSource(path, rel, cfg)
		if err != nil || strings.TrimSpace(file.Content) == "" {
			return nil
		}
		files = append(files, file)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ReadSourceFile loads one file of the project at root. rel may be relative
// to root or absolute, but must lie inside root and have a configured
// extension.
func ReadSourceFile(root, rel string, cfg config.ProjectConfig) (SourceFile, error) {
	path := rel
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, rel)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return SourceFile{}, fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	if !cfg.HasExtension(filepath.Ext(path)) {
		return SourceFile{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(path))
	}
	return readSource(path, filepath.ToSlash(rel), cfg)
}

func readSource(path, rel string, cfg config.ProjectConfig) (SourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SourceFile{}, err
	}
	content := strings.ToValidUTF8(string(data), "")

	module, subModule := modulesOf(rel)
	return SourceFile{
		FileInput: types.FileInput{
			Path:      rel,
			Module:    module,
			SubModule: subModule,
			Content:   truncateFile(content, cfg.MaxFileChars),
		},
		AbsPath: path,
		Hash:    sha256.Sum256(data),
		Size:    int64(len(data)),
	}, nil
}

// modulesOf derives module and sub-module from the leading directories of a
// slash-separated relative path
func modulesOf(rel string) (string, string) {
	dirs := strings.Split(rel, "/")
	dirs = dirs[:len(dirs)-1]
	switch len(dirs) {
	case 0:
		return RootModule, ""
	case 1:
		return dirs[0], ""
	default:
		return dirs[0], dirs[1]
	}
}

// truncateFile cuts content to at most maxChars bytes on a rune boundary
func truncateFile(content string, maxChars int) string {
	if maxChars <= 0 || len(content) <= maxChars {
		return content
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + TruncatedMarker
}
