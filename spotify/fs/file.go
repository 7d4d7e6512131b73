package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/tidwall/pretty"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/spotfolio/errutil"
	"github.com/xeptore/spotfolio/must"
)

// JSONFile is a JSON document stored at Path.
type JSONFile[T any] struct {
	Path string
}

// Read decodes the file contents. It returns os.ErrNotExist as is when the
// file is missing.
func (f JSONFile[T]) Read() (out *T, err error) {
	flawP := flaw.P{"file_path": f.Path}

	file, err := os.OpenFile(f.Path, os.O_RDONLY, 0o0644)
	if nil != err {
		if errors.Is(err, os.ErrNotExist) {
			return nil, os.ErrNotExist
		}
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to open file for read: %v", err)).Append(flawP)
	}
	defer func() {
		if closeErr := file.Close(); nil != closeErr {
			flawP["err_debug_tree"] = errutil.Tree(closeErr).FlawP()
			closeErr = flaw.From(fmt.Errorf("failed to close file: %v", closeErr)).Append(flawP)
			err = must.JoinFlaw(err, closeErr)
		}
	}()

	var v T
	if err := json.NewDecoder(file).Decode(&v); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to decode file contents: %v", err)).Append(flawP)
	}

	return &v, nil
}

// Write replaces the file contents with the indented encoding of v. The
// content is written to a temporary file in the same directory first and
// renamed over the target, so readers never observe a partial document.
func (f JSONFile[T]) Write(v T) (err error) {
	flawP := flaw.P{"file_path": f.Path}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o0755); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to create file directory: %v", err)).Append(flawP)
	}

	b, err := json.Marshal(v)
	if nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to encode file contents: %v", err)).Append(flawP)
	}
	b = pretty.Pretty(b)

	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to create temporary file: %v", err)).Append(flawP)
	}
	tmpPath := tmp.Name()
	flawP["tmp_file_path"] = tmpPath
	defer func() {
		if nil != err {
			if removeErr := os.Remove(tmpPath); nil != removeErr && !errors.Is(removeErr, os.ErrNotExist) {
				flawP["err_debug_tree"] = errutil.Tree(removeErr).FlawP()
				removeErr = flaw.From(fmt.Errorf("failed to remove temporary file: %v", removeErr)).Append(flawP)
				err = must.JoinFlaw(err, removeErr)
			}
		}
	}()

	if _, err := tmp.Write(b); nil != err {
		_ = tmp.Close()
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to write file contents: %v", err)).Append(flawP)
	}

	if err := tmp.Sync(); nil != err {
		_ = tmp.Close()
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to sync file: %v", err)).Append(flawP)
	}

	if err := tmp.Close(); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to close temporary file: %v", err)).Append(flawP)
	}

	if err := os.Rename(tmpPath, f.Path); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to replace file: %v", err)).Append(flawP)
	}

	return nil
}
