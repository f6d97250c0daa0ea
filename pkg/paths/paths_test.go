package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		cwd        string
		optSource  string
		optTarget  string
		configured Dirs
		want       Dirs
	}{
		{
			name: "built-in defaults",
			cwd:  "/home/user",
			want: Dirs{Source: DefaultSource, Target: DefaultTarget},
		},
		{
			name:      "target derives source",
			cwd:       "/home/user",
			optTarget: "/opt",
			want:      Dirs{Source: "/opt/encap", Target: "/opt"},
		},
		{
			name:      "source derives target",
			cwd:       "/home/user",
			optSource: "/opt/pkgs/encap",
			want:      Dirs{Source: "/opt/pkgs/encap", Target: "/opt/pkgs"},
		},
		{
			name:      "relative values join the working directory",
			cwd:       "/home/user",
			optSource: "encap",
			optTarget: "./local/",
			want:      Dirs{Source: "/home/user/encap", Target: "/home/user/local"},
		},
		{
			name:      "values are cleaned",
			cwd:       "/",
			optTarget: "/usr//local/../local/",
			want:      Dirs{Source: "/usr/local/encap", Target: "/usr/local"},
		},
		{
			name:       "configured values",
			cwd:        "/home/user",
			configured: Dirs{Source: "/srv/encap", Target: "/srv"},
			want:       Dirs{Source: "/srv/encap", Target: "/srv"},
		},
		{
			name:       "configured target only",
			cwd:        "/home/user",
			configured: Dirs{Target: "/srv"},
			want:       Dirs{Source: "/srv/encap", Target: "/srv"},
		},
		{
			name:       "relative configured values are ignored",
			cwd:        "/home/user",
			configured: Dirs{Source: "encap", Target: "/srv"},
			want:       Dirs{Source: "/srv/encap", Target: "/srv"},
		},
		{
			name:       "command line wins over configuration",
			cwd:        "/home/user",
			optSource:  "/opt/encap",
			configured: Dirs{Source: "/srv/encap", Target: "/srv"},
			want:       Dirs{Source: "/opt/encap", Target: "/opt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.cwd, tt.optSource, tt.optTarget, tt.configured)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("relative value without absolute working directory", func(t *testing.T) {
		_, err := Resolve("", "encap", "", Dirs{})
		assert.Error(t, err)
	})
}

func TestSourceExclude(t *testing.T) {
	tests := []struct {
		source, target string
		want           string
		ok             bool
	}{
		{"/usr/local/encap", "/usr/local", "encap", true},
		{"/usr/local/lib/encap", "/usr/local", "lib/encap", true},
		{"/opt/encap", "/usr/local", "", false},
		{"/usr", "/usr/local", "", false},
		{"/usr/local", "/usr/local", "", false},
		{"/usr/local..x/encap", "/usr/local", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got, ok := SourceExclude(tt.source, tt.target)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestXDGLocations(t *testing.T) {
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	xdg.Reload()

	assert.Equal(t, "/custom/config/encap/config.toml", ConfigFile())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "", ExpandHome(""))
	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, "encap"), ExpandHome("~/encap"))
	assert.Equal(t, "~other/encap", ExpandHome("~other/encap"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
}
