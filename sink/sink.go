// Package sink writes pipeline results to a directory.
//
// Every file is first written into a staging directory next to its final
// location and then renamed into place, so readers never observe a half
// written page or sheet. Files about to be replaced are set aside in the
// staging directory first. If anything fails, files already moved by this
// publish are taken back out, the set aside files are put back, and the
// staging directory is removed.
package sink

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/spriteatlas/atlas"
)

// WriteError reports a failure to write an output file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// EncodePNG writes img as a PNG. The encoder settings are fixed, so equal
// images always give equal bytes.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, img)
}

// Publish writes all pages and sheets of res into dir, creating dir if
// needed. On error dir is left holding the files it held before the call.
func Publish(ctx context.Context, dir string, res *atlas.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &WriteError{Path: dir, Err: err}
	}
	staging, err := os.MkdirTemp(dir, ".spriteatlas-")
	if err != nil {
		return &WriteError{Path: dir, Err: errors.Wrap(err, "creating staging directory")}
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			glog.Warningf("removing staging directory %s: %v", staging, err)
		}
	}()

	for _, p := range res.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(staging, p.Name), func(w io.Writer) error { return EncodePNG(w, p.Image) }); err != nil {
			return err
		}
	}
	for _, d := range res.Sheets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(staging, d.Name), func(w io.Writer) error {
			_, err := w.Write(d.Data)
			return err
		}); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var moved []string
	var backups [][2]string
	backupDir := ""
	rollback := func() {
		for _, m := range moved {
			os.Remove(m)
		}
		for i := len(backups) - 1; i >= 0; i-- {
			if err := os.Rename(backups[i][1], backups[i][0]); err != nil {
				glog.Errorf("restoring %s: %v", backups[i][0], err)
			}
		}
	}
	for _, name := range res.Files() {
		final := filepath.Join(dir, name)
		if fi, err := os.Lstat(final); err == nil && fi.Mode().IsRegular() {
			if backupDir == "" {
				if backupDir, err = os.MkdirTemp(staging, "prev-"); err != nil {
					rollback()
					return &WriteError{Path: final, Err: errors.Wrap(err, "creating backup directory")}
				}
			}
			bak := filepath.Join(backupDir, name)
			if err := os.Rename(final, bak); err != nil {
				rollback()
				return &WriteError{Path: final, Err: errors.Wrap(err, "setting aside previous file")}
			}
			backups = append(backups, [2]string{final, bak})
		}
		if err := os.Rename(filepath.Join(staging, name), final); err != nil {
			rollback()
			return &WriteError{Path: final, Err: err}
		}
		moved = append(moved, final)
		glog.V(1).Infof("wrote %s", final)
	}
	glog.Infof("%s: published %d files to %s", res.Name, len(moved), dir)
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		f.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
