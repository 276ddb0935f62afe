// makemetadata builds metadata.csv for a folder of images named
// METHOD_LOCATION_SAMPLE_MODE_MAGNIFICATION.ext, the layout microview reads.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/microview"
	_ "github.com/carbocation/microview/compileinfoprint"
	"github.com/carbocation/microview/metadata"
	"github.com/carbocation/pfx"
)

func main() {
	var folder, exts, csvName string
	var recursive bool

	flag.StringVar(&folder, "folder", "images", "Folder holding the images. May be a gs:// URL.")
	flag.StringVar(&exts, "ext", strings.Join(metadata.DefaultExtensions, ","), "Comma-separated image extensions to include.")
	flag.StringVar(&csvName, "csv-name", "metadata.csv", "Name of the CSV to write. It is placed in --folder for local folders and in the working directory for gs:// folders.")
	flag.BoolVar(&recursive, "recursive", false, "(Optional) Also include images in subfolders. Their relative path is recorded in rel_path.")
	flag.Parse()

	folder, err := microview.ExpandHome(folder)
	if err != nil {
		log.Fatalln(err)
	}

	var client *storage.Client
	outPath := filepath.Join(folder, csvName)
	if microview.IsGoogleStoragePath(folder) {
		client, err = storage.NewClient(context.Background())
		if err != nil {
			log.Fatalln(err)
		}
		outPath = csvName
	}

	if _, err := makeMetadata(folder, strings.Split(exts, ","), recursive, client, outPath); err != nil {
		log.Fatalln(err)
	}
}

// makeMetadata lists folder and writes one row per conforming image to
// outPath. The file is written even when nothing conforms, so the viewer
// still finds a table (with only a header) to open.
func makeMetadata(folder string, exts []string, recursive bool, client *storage.Client, outPath string) (int, error) {
	names, err := listImages(folder, recursive, client)
	if err != nil {
		return 0, err
	}

	rows, skipped := metadata.FromFilenames(names, exts)
	for _, s := range skipped {
		log.Printf("Skipping %s: %v\n", s.Name, s.Err)
	}

	if len(rows) == 0 {
		log.Printf("No images in %s follow the METHOD_LOCATION_SAMPLE_MODE_MAGNIFICATION naming pattern; writing a header-only %s\n", folder, outPath)
	}

	if err := writeFile(outPath, rows); err != nil {
		return 0, err
	}

	log.Printf("Wrote %d rows to %s (%d files skipped)\n", len(rows), outPath, len(skipped))

	return len(rows), nil
}

// listImages returns the file names under folder, relative to it and with
// forward slashes.
func listImages(folder string, recursive bool, client *storage.Client) ([]string, error) {
	if microview.IsGoogleStoragePath(folder) {
		names, err := microview.ListFromGoogleStorage(folder, client)
		if err != nil {
			return nil, err
		}

		if recursive {
			return names, nil
		}

		out := make([]string, 0, len(names))
		for _, name := range names {
			if !strings.Contains(name, "/") {
				out = append(out, name)
			}
		}
		return out, nil
	}

	if !recursive {
		entries, err := os.ReadDir(folder)
		if err != nil {
			return nil, pfx.Err(err)
		}

		out := make([]string, 0, len(entries))
		for _, entry := range entries {
			if !entry.IsDir() {
				out = append(out, entry.Name())
			}
		}
		return out, nil
	}

	var out []string
	err := filepath.WalkDir(folder, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(folder, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, pfx.Err(err)
	}

	return out, nil
}

func writeFile(outPath string, rows []metadata.Row) error {
	f, err := os.Create(outPath)
	if err != nil {
		return pfx.Err(err)
	}

	if err := write(f, rows); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func write(w io.Writer, rows []metadata.Row) error {
	if err := metadata.WriteCSV(w, rows); err != nil {
		return pfx.Err(fmt.Errorf("writing metadata: %w", err))
	}
	return nil
}
