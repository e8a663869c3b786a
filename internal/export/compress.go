package export

import (
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	dkerrors "domkey/internal/errors"
)

// WriteFile encodes snap into path, zstd-compressed when compress is set.
func WriteFile(path string, snap *Snapshot, format Format, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return dkerrors.New(dkerrors.ExportFailed, "cannot create "+path, err)
	}
	if err := Write(f, snap, format, compress); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return dkerrors.New(dkerrors.ExportFailed, "cannot close "+path, err)
	}
	return nil
}

// Write encodes snap into w, zstd-compressed when compress is set.
func Write(w io.Writer, snap *Snapshot, format Format, compress bool) error {
	if !compress {
		return Encode(w, snap, format)
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return dkerrors.New(dkerrors.ExportFailed, "cannot start zstd stream", err)
	}
	if err := Encode(zw, snap, format); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return dkerrors.New(dkerrors.ExportFailed, "cannot finish zstd stream", err)
	}
	return nil
}
