package configs

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed *.yaml
var embeddedProfiles embed.FS

// Names returns the list of embedded profile filenames.
func Names() []string {
	entries, err := fs.Glob(embeddedProfiles, "*.yaml")
	if err != nil {
		return nil
	}
	sort.Strings(entries)
	return entries
}

// Load returns the embedded profile by filename.
func Load(name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("embedded profile name is empty")
	}
	data, err := fs.ReadFile(embeddedProfiles, name)
	if err != nil {
		return nil, fmt.Errorf("read embedded profile %q: %w", name, err)
	}
	return data, nil
}
