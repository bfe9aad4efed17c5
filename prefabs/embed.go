package prefabs

import (
	"embed"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

//go:embed *.yaml
var PrefabsFS embed.FS

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

// Load reads a prefab yaml, preferring the working-tree copy over the
// embedded one so tuning edits apply without a rebuild.
func Load(name string) ([]byte, error) {
	clean := cleanPath(name)
	if data, err := os.ReadFile(diskPath(clean)); err == nil {
		return data, nil
	}
	return PrefabsFS.ReadFile(clean)
}

// LoadScript reads a platform script by name, with the same disk override
// as Load. Bare names resolve under scripts/.
func LoadScript(name string) ([]byte, error) {
	clean := cleanPath(name)
	if !strings.HasPrefix(clean, "scripts/") {
		clean = path.Join("scripts", clean)
	}
	if data, err := os.ReadFile(diskPath(clean)); err == nil {
		return data, nil
	}
	return ScriptsFS.ReadFile(clean)
}

// ModTime reports the disk copy's modification time, if one exists.
func ModTime(name string) (time.Time, bool) {
	info, err := os.Stat(diskPath(cleanPath(name)))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func cleanPath(p string) string {
	s := filepath.ToSlash(p)
	return strings.TrimPrefix(s, "prefabs/")
}

func diskPath(clean string) string {
	return filepath.Join("prefabs", filepath.FromSlash(clean))
}
