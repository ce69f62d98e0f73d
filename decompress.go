package himawari

import (
	"bufio"
	"compress/bzip2"
	"io"
	"os"
	"path/filepath"

	"github.com/bodgit/himawari/metadata"
)

func decompress(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	w := bufio.NewWriterSize(out, 1<<20)
	if _, err = io.Copy(w, bzip2.NewReader(bufio.NewReaderSize(in, 1<<20))); err != nil {
		return err
	}

	return w.Flush()
}

// prepareGrid returns the path of the decompressed grid after checking its
// size. If the grid was decompressed by this call then the returned cleanup
// function removes it when remove is true.
func (h *Himawari) prepareGrid(file string, md *metadata.Metadata, remove bool) (string, func(), error) {
	grid := file
	created := false

	if md.Compressed {
		grid = filepath.Join(filepath.Dir(file), md.GridFilename())
		h.logger.Printf("Decompress file %s\n", filepath.Base(file))
		if err := decompress(file, grid); err != nil {
			return "", nil, err
		}
		created = true
	}

	info, err := os.Stat(grid)
	if err == nil {
		err = md.Validate(info.Size())
	}
	if err != nil {
		if created {
			os.Remove(grid)
		}
		return "", nil, err
	}

	return grid, func() {
		if created && remove {
			os.Remove(grid)
		}
	}, nil
}
