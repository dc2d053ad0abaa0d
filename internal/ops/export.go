package ops

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hpungsan/dinos/internal/codec"
	"github.com/hpungsan/dinos/internal/config"
	"github.com/hpungsan/dinos/internal/dino"
	"github.com/hpungsan/dinos/internal/errors"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path    string // optional, default: ~/.dinos/exports/<name>-<timestamp>.jsonl
	Name    string // optional label for the default file name
	Records []dino.Dino
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	ExportID   string `json:"export_id"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes records to a JSONL file with a header line.
// The file is written to a temp path and renamed into place, so an existing
// file survives a failed export.
func Export(ctx context.Context, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	if err := checkRecordLimit(cfg, len(input.Records)); err != nil {
		return nil, err
	}

	now := time.Now()
	exportPath := input.Path
	if exportPath == "" {
		var err error
		exportPath, err = defaultExportPath(input.Name, now)
		if err != nil {
			return nil, err
		}
	}

	// Default paths are validated too: the name label is user input.
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	select {
	case <-ctx.Done():
		return nil, errors.NewCancelled("export")
	default:
	}

	header := codec.NewHeader(now, len(input.Records))
	w := bufio.NewWriter(file)
	if err := codec.WriteJSONL(w, header, input.Records); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := w.Flush(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}

	// Close before rename (required on Windows).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination.
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}

	// On Windows, os.Rename fails if the destination exists; that is reported
	// rather than worked around with a non-atomic delete and rename.
	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{
		Path:       exportPath,
		ExportID:   header.ExportID,
		Count:      len(input.Records),
		ExportedAt: header.ExportedAt,
	}, nil
}

// defaultExportPath returns ~/.dinos/exports/<name>-<timestamp>.jsonl.
func defaultExportPath(name string, now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}

	label := "dinos"
	if name != "" {
		label = SanitizeForFilename(name)
	}
	filename := fmt.Sprintf("%s-%s.jsonl", label, now.Format("2006-01-02T150405"))
	return filepath.Join(dir, filename), nil
}
