package scene

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"strings"
)

// ErrSourceNotFound is returned when the scene document is neither in the
// archive nor on disk.
var ErrSourceNotFound = errors.New("scene descriptor not found")

// Source is an open scene document and where it came from.
type Source struct {
	io.ReadCloser
	Origin string
}

// OpenSource looks for name inside the zip archive first and then as a
// plain file. An empty archive skips the archive lookup.
func OpenSource(archive, name string) (*Source, error) {
	if archive != "" {
		src, err := openFromArchive(archive, name)
		if err == nil {
			return src, nil
		}
		if !errors.Is(err, os.ErrNotExist) && !errors.Is(err, ErrSourceNotFound) {
			log.Printf("Scene archive %s unusable: %v", archive, err)
		}
	}

	f, err := os.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, name)
		}
		return nil, err
	}
	return &Source{ReadCloser: f, Origin: name}, nil
}

func openFromArchive(archive, name string) (*Source, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, err
	}

	want := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	for _, f := range zr.File {
		if !strings.EqualFold(path.Clean(f.Name), want) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			zr.Close()
			return nil, err
		}
		return &Source{
			ReadCloser: archiveFile{ReadCloser: rc, archive: zr},
			Origin:     archive + "!" + f.Name,
		}, nil
	}
	zr.Close()
	return nil, ErrSourceNotFound
}

// archiveFile closes the archive together with the entry.
type archiveFile struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (a archiveFile) Close() error {
	err := a.ReadCloser.Close()
	if cerr := a.archive.Close(); err == nil {
		err = cerr
	}
	return err
}

// Load opens the scene document via OpenSource and parses it.
func Load(archive, name string) (*Descriptor, string, error) {
	src, err := OpenSource(archive, name)
	if err != nil {
		return nil, "", err
	}
	defer src.Close()

	desc, err := Parse(src)
	if err != nil {
		return nil, src.Origin, fmt.Errorf("%s: %w", src.Origin, err)
	}
	return desc, src.Origin, nil
}
