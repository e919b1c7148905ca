package git

import (
	"encoding/json"
	stderrors "errors"
	"os"

	"github.com/matzehuels/gitpkg/pkg/backend"
)

// packageManifest holds the package.json fields gitpkg reports.
type packageManifest struct {
	Name        string          `json:"name"`
	DisplayName string          `json:"displayName"`
	Version     string          `json:"version"`
	Author      json.RawMessage `json:"author"`
}

func readManifest(path string) (packageManifest, error) {
	var m packageManifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, err
	}
	if m.Name == "" {
		return m, stderrors.New("manifest has no name")
	}
	return m, nil
}

// author accepts both "author": "Name" and "author": {"name": "Name"}.
func (m packageManifest) author() string {
	if len(m.Author) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(m.Author, &s); err == nil {
		return s
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(m.Author, &obj); err == nil {
		return obj.Name
	}
	return ""
}

func (m packageManifest) info(url, manifestPath string) backend.PackageInfo {
	display := m.DisplayName
	if display == "" {
		display = m.Name
	}
	return backend.PackageInfo{
		PackageID:    m.Name + "@" + url,
		DisplayName:  display,
		Author:       m.author(),
		Version:      m.Version,
		ManifestPath: manifestPath,
	}
}
