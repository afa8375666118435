package dbexport

import (
	"fmt"
	"path/filepath"
)

// Mode is the output strategy chosen from the counted row total.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeMulti  Mode = "multi"
)

// FileEntry is one written output file.
type FileEntry struct {
	Name string
	Rows int
}

// Manifest summarizes a run.
type Manifest struct {
	Mode      Mode
	TotalRows int64 // from the count query
	Exported  int64 // rows written to files
	Skipped   int64 // rows dropped after a RowError
	Files     []FileEntry
}

// FileNames returns the written file names in order.
func (m *Manifest) FileNames() []string {
	names := make([]string, len(m.Files))
	for i, f := range m.Files {
		names[i] = f.Name
	}
	return names
}

// SingleFileName is the output name used in single-file mode.
func SingleFileName(dir, base, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%s", base, ext))
}

// ChunkFileName is the output name of the counter-th chunk (1-based).
func ChunkFileName(dir, base string, counter int, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%03d.%s", base, counter, ext))
}

// ChooseMode picks single-file mode up to and including singleFileMax rows.
func ChooseMode(total, singleFileMax int64) Mode {
	if total <= singleFileMax {
		return ModeSingle
	}
	return ModeMulti
}

// Plan returns the files a run would write for total rows, assuming the
// stream yields exactly the counted rows.
func Plan(total int64, opts Options) (Mode, []FileEntry) {
	opts = opts.withDefaults()
	mode := ChooseMode(total, opts.SingleFileMax)
	if mode == ModeSingle {
		return mode, []FileEntry{{Name: SingleFileName(opts.Dir, opts.Output, opts.Ext), Rows: int(total)}}
	}
	size := int64(opts.ChunkSize)
	var files []FileEntry
	counter := 1
	for remaining := total; remaining > 0; remaining -= size {
		n := size
		if remaining < size {
			n = remaining
		}
		files = append(files, FileEntry{Name: ChunkFileName(opts.Dir, opts.Output, counter, opts.Ext), Rows: int(n)})
		counter++
	}
	return mode, files
}
