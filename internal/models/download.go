// Package models downloads recognition models over HTTP and reports
// progress to the caller through a callback.
package models

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/voxkit/voxkit/internal/config"
)

const (
	whisperModelURL  = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.en.bin"
	whisperModelName = "ggml-base.en.bin"
)

// Progress is one download progress event.
type Progress struct {
	Filename   string
	Percent    int
	Downloaded int64
	Total      int64
}

// ProgressFunc receives progress events during a download. Percent is
// -1 when the server does not report a content length.
type ProgressFunc func(Progress)

// Download fetches url into destDir/filename and returns the final
// path. The file is written to a temp path and renamed on completion,
// so a partial download never shadows a good model. Subdirectories in
// filename are created as needed. progress may be nil.
func Download(url, filename, destDir string, progress ProgressFunc) (string, error) {
	destPath := filepath.Join(destDir, filename)
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", fmt.Errorf("creating models dir: %w", err)
	}

	if info, err := os.Stat(destPath); err == nil && info.Size() > 0 {
		log.Info("model already downloaded", "path", destPath, "size", info.Size())
		return destPath, nil
	}

	log.Info("downloading model", "url", url, "dest", destPath)

	resp, err := http.Get(url) //nolint:gosec // URLs come from the model registry or the user
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	pw := &progressWriter{
		writer:   f,
		total:    resp.ContentLength,
		filename: filename,
		report:   progress,
	}

	_, err = io.Copy(pw, resp.Body)
	f.Close()
	if err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing model file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("moving model file: %w", err)
	}

	log.Info("download complete", "path", destPath, "bytes", pw.written)
	return destPath, nil
}

// DownloadWhisper fetches the default whisper base.en model into the
// models directory and returns its path.
func DownloadWhisper(progress ProgressFunc) (string, error) {
	return Download(whisperModelURL, whisperModelName, config.DefaultModelsDir(), progress)
}

// progressWriter wraps an io.Writer and emits a progress event per
// chunk written.
type progressWriter struct {
	writer   io.Writer
	total    int64
	written  int64
	filename string
	report   ProgressFunc
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.writer.Write(p)
	pw.written += int64(n)
	if pw.report != nil {
		ev := Progress{
			Filename:   pw.filename,
			Downloaded: pw.written,
			Total:      pw.total,
			Percent:    -1,
		}
		if pw.total > 0 {
			ev.Percent = int(float64(pw.written) / float64(pw.total) * 100)
		}
		pw.report(ev)
	}
	return n, err
}
