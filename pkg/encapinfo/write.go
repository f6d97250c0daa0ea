package encapinfo

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/types"
)

// Generator names the writer in the header comment of written files.
var Generator = "encap"

// Write renders info in the text format.
func Write(w io.Writer, info *Info) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "encap %s\t# %s\n", info.Format, Generator)

	single := []struct{ key, value string }{
		{"platform", info.Platform},
		{"date", info.Date},
		{"contact", info.Contact},
		{"description", info.Description},
	}
	for _, f := range single {
		if f.value != "" {
			fmt.Fprintf(bw, "%s %s\n", f.key, f.value)
		}
	}

	for _, v := range info.Excludes {
		fmt.Fprintf(bw, "exclude %s\n", v)
	}
	for _, v := range info.Requires {
		fmt.Fprintf(bw, "require %s\n", v)
	}
	for _, v := range info.LinkDirs {
		fmt.Fprintf(bw, "linkdir %s\n", v)
	}
	for _, p := range info.Prereqs {
		fmt.Fprintf(bw, "prereq %s\n", p.String())
	}
	for _, path := range info.sortedLinkNames() {
		fmt.Fprintf(bw, "linkname %s %s\n", path, info.LinkNames[path])
	}

	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "cannot write encapinfo")
	}
	return nil
}

// WriteFile writes info to path in the text format.
func WriteFile(fsys types.FS, path string, info *Info) error {
	var buf bytes.Buffer
	if err := Write(&buf, info); err != nil {
		return err
	}
	if err := fsys.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot write %s", path)
	}
	return nil
}
