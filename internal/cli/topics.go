package cli

import (
	"embed"
	"io/fs"
)

//go:embed topics/*.md
var topicsEmbed embed.FS

// topicsFS holds the help topics shown by "encap help <topic>".
func topicsFS() fs.FS {
	sub, err := fs.Sub(topicsEmbed, "topics")
	if err != nil {
		panic(err)
	}
	return sub
}
