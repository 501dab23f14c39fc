package site

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Archive zips every file of the output except a previous archive.
func (b *Builder) Archive() ([]byte, error) {
	files, err := b.out.Files("")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range files {
		if name == b.opts.ArchiveName {
			continue
		}
		data, err := b.out.Read(name)
		if err != nil {
			return nil, err
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("site: archive %s: %w", name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("site: archive %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("site: close archive: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *Builder) writeArchive() error {
	data, err := b.Archive()
	if err != nil {
		return err
	}
	return b.write(b.opts.ArchiveName, data)
}
