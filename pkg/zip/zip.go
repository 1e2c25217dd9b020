// Package zip bundles exported artifacts into a single archive.
package zip

import (
	"archive/zip"
	"bytes"
	"strings"
)

// Asset is one archive entry. When MIME is recognized the filename gets a
// matching extension.
type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

// ArchiveAssets writes all assets into an in-memory zip archive. Entries
// that fail to encode are skipped rather than aborting the export.
func ArchiveAssets(assets []Asset) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, asset := range assets {
		w, err := zw.Create(entryName(asset))
		if err != nil {
			continue
		}
		if _, err := w.Write(asset.Data); err != nil {
			continue
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}

func entryName(asset Asset) string {
	name := asset.Filename
	if name == "" {
		name = "asset"
	}
	if ext := extensionFor(asset.MIME); ext != "" && !strings.HasSuffix(strings.ToLower(name), ext) {
		name += ext
	}
	return name
}

func extensionFor(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "model/gltf-binary":
		return ".glb"
	case "text/uri-list":
		return ".url.txt"
	default:
		return ""
	}
}
