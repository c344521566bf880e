// Package sigil resolves planet and angel identities to sigil images that
// are present on disk.
package sigil

import (
	"io/fs"
	"path"
	"strings"
)

// AssetDir is the directory, relative to the asset root, holding sigil files.
const AssetDir = "assets/sigils"

// Entry is one record of the sigil manifest.
type Entry struct {
	File   string `json:"file"`
	Angel  string `json:"angel,omitempty"`
	Alt    string `json:"alt,omitempty"`
	Notes  string `json:"notes,omitempty"`
	Source string `json:"source,omitempty"`
}

// Manifest indexes entries by lowercase file name and lowercase angel name.
type Manifest struct {
	byFile  map[string]Entry
	byAngel map[string]Entry
}

// NewManifest indexes entries. Map keys name the entry and stand in for the
// angel when an entry does not set one.
func NewManifest(entries map[string]Entry) *Manifest {
	m := &Manifest{
		byFile:  make(map[string]Entry, len(entries)),
		byAngel: make(map[string]Entry, len(entries)),
	}
	for name, e := range entries {
		if file := strings.ToLower(e.File); file != "" {
			m.byFile[file] = e
		}
		angel := e.Angel
		if angel == "" {
			angel = name
		}
		if angel = strings.ToLower(angel); angel != "" {
			m.byAngel[angel] = e
		}
	}
	return m
}

// Len reports the number of indexed files.
func (m *Manifest) Len() int { return len(m.byFile) }

// Sigil is the display metadata of a resolved sigil.
type Sigil struct {
	Path   string  `json:"path"`
	Alt    string  `json:"alt"`
	Notes  *string `json:"notes"`
	Source *string `json:"source"`
}

// Resolver checks manifest candidates against an asset file system.
type Resolver struct {
	manifest *Manifest
	assets   fs.FS
}

// NewResolver returns a resolver reading assets from root.
func NewResolver(manifest *Manifest, root fs.FS) *Resolver {
	if manifest == nil {
		manifest = NewManifest(nil)
	}
	return &Resolver{manifest: manifest, assets: root}
}

// Resolve looks up file first, then angel. Without a manifest hit the file
// name, or "<angel>.png", is tried directly. It returns nil when the asset
// does not exist.
func (r *Resolver) Resolve(file, angel string) *Sigil {
	entry, found := r.manifest.byFile[strings.ToLower(file)]
	if !found {
		entry, found = r.manifest.byAngel[strings.ToLower(angel)]
	}

	name := file
	if found && entry.File != "" {
		name = entry.File
	}
	if name == "" && angel != "" {
		name = strings.ToLower(angel) + ".png"
	}
	if name == "" || r.assets == nil {
		return nil
	}

	rel := path.Join(AssetDir, name)
	if !strings.HasPrefix(rel, AssetDir+"/") || !fs.ValidPath(rel) {
		return nil
	}
	if _, err := fs.Stat(r.assets, rel); err != nil {
		return nil
	}

	s := &Sigil{Path: rel, Alt: entry.Alt}
	if s.Alt == "" {
		who := angel
		if who == "" {
			who = "Angel"
		}
		s.Alt = who + " sigil"
	}
	if entry.Notes != "" {
		s.Notes = &entry.Notes
	}
	if entry.Source != "" {
		s.Source = &entry.Source
	}
	return s
}
