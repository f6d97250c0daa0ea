package encapinfo

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/types"
)

// ExcludeFileName is the legacy exclude list looked up in the source
// directory and in target directories.
const ExcludeFileName = "encap.exclude"

// ReadExcludeFile reads the whitespace separated entries of
// dir/encap.exclude, joining each onto prefix when prefix is not empty.
// A missing file is not an error; found reports whether it existed.
func ReadExcludeFile(fsys types.FS, dir, prefix string) (entries []string, found bool, err error) {
	data, err := fsys.ReadFile(filepath.Join(dir, ExcludeFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s/%s", dir, ExcludeFileName)
	}

	for _, tok := range strings.Fields(string(data)) {
		if prefix != "" {
			tok = prefix + "/" + tok
		}
		entries = append(entries, tok)
	}
	return entries, true, nil
}
