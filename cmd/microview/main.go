// microview serves a browser gallery of microscopy images, filtered by the
// metadata table that describes them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/carbocation/microview"
	_ "github.com/carbocation/microview/compileinfoprint"
	"github.com/carbocation/microview/imagestore"
	"github.com/carbocation/microview/metadata"
	"github.com/kardianos/osext"
)

var (
	global *Global
)

func init() {
	// Prevent seed re-use
	rand.Seed(int64(time.Now().Nanosecond()))
}

func main() {
	errs := make(chan error, 1)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig,
		os.Interrupt,
		os.Kill,
		syscall.SIGTERM,
		syscall.SIGUSR1,
	)

	var metadataPath, imageRoot, encoding string
	var port, thumbWidth, perRow int
	var strict bool
	flag.StringVar(&metadataPath, "metadata", "", "(Optional) Path to the metadata table (.csv, .tsv or .xls, optionally compressed). May be a gs:// URL. Defaults to metadata.csv next to this binary.")
	flag.StringVar(&imageRoot, "images", "", "(Optional) Folder under which the images sit. May be a gs:// URL. Defaults to an 'images' folder next to the metadata file.")
	flag.IntVar(&port, "port", 9019, "Port for HTTP server")
	flag.BoolVar(&strict, "strict", false, "(Optional) Refuse to start if any method, location or mode is not a known value.")
	flag.StringVar(&encoding, "encoding", "", "(Optional) Character set of the metadata file, e.g. windows-1252. Guessed when the file is not UTF-8.")
	flag.IntVar(&thumbWidth, "thumb-width", 480, "Width in pixels of gallery thumbnails")
	flag.IntVar(&perRow, "per-row", 2, "Default number of images per gallery row (1-8)")
	flag.Parse()

	var err error
	if metadataPath == "" {
		metadataPath, err = defaultMetadataPath()
		if err != nil {
			log.Fatalln(err)
		}
	}
	if metadataPath, err = microview.ExpandHome(metadataPath); err != nil {
		log.Fatalln(err)
	}

	if imageRoot == "" {
		imageRoot = defaultImageRoot(metadataPath)
	}
	if imageRoot, err = microview.ExpandHome(imageRoot); err != nil {
		log.Fatalln(err)
	}

	var sclient *storage.Client
	if microview.IsGoogleStoragePath(metadataPath) || microview.IsGoogleStoragePath(imageRoot) {
		sclient, err = storage.NewClient(context.Background())
		if err != nil {
			log.Fatalln(err)
		}
	}

	global = &Global{
		Site:          "Microview",
		Company:       "Microscopy Image Viewer",
		log:           log.New(os.Stderr, log.Prefix(), log.Ldate|log.Ltime),
		storageClient: sclient,

		MetadataPath: metadataPath,
		ImageRoot:    imageRoot,
		ThumbWidth:   thumbWidth,
		PerRow:       clamp(perRow, 1, 8),
	}

	table, err := metadata.Load(metadataPath, metadata.Options{
		Strict:   strict,
		Encoding: encoding,
		Client:   sclient,
		Log:      global.log,
	})
	if err != nil {
		var loadErr *metadata.LoadError
		if errors.As(err, &loadErr) {
			global.log.Println("Could not load metadata:", loadErr)
		} else {
			global.log.Println(err)
		}
		os.Exit(1)
	}

	global.table = table
	global.images = imagestore.New(imageRoot, sclient)

	global.log.Printf("Loaded %d rows from %s; images are under %s\n", table.Len(), metadataPath, imageRoot)

	warnings := global.images.Verify(table)
	for _, w := range warnings {
		global.log.Println("Warning:", w)
	}
	if len(warnings) > 0 {
		global.log.Printf("%d of %d images listed in the metadata could not be found\n", len(warnings), table.Len())
	}

	global.log.Println("Launching", global.Site)

	go func() {
		global.log.Println("Starting HTTP server on port", port)

		routing, err := router(global)
		if err != nil {
			errs <- err
			global.log.Println(err)
			sig <- syscall.SIGTERM
			return
		}

		if err := http.ListenAndServe(fmt.Sprintf(`:%d`, port), routing); err != nil {
			errs <- err
			global.log.Println(err)
			sig <- syscall.SIGTERM
			return
		}
	}()

Outer:
	for {
		select {
		case sigl := <-sig:

			if sigl == syscall.SIGUSR1 {
				SigStatus()
				continue
			}

			// By default, exit
			global.log.Printf("\nExit: %s\n", sigl.String())

			break Outer

		case err := <-errs:
			if err == nil {
				global.log.Println("Finished")
				break Outer
			}

			// Return a status code indicating failure
			global.log.Println("Exiting due to error", err)
			os.Exit(1)
		}
	}
}

func SigStatus() {
	global.log.Println("There are", runtime.NumGoroutine(), "goroutines running")
}

// defaultMetadataPath is metadata.csv in the folder holding the binary.
func defaultMetadataPath() (string, error) {
	folder, err := osext.ExecutableFolder()
	if err != nil {
		return "", err
	}

	return filepath.Join(folder, "metadata.csv"), nil
}

// defaultImageRoot is the images folder beside the metadata file.
func defaultImageRoot(metadataPath string) string {
	// path.Dir would collapse the double slash of gs://
	if microview.IsGoogleStoragePath(metadataPath) {
		return metadataPath[:strings.LastIndex(metadataPath, "/")] + "/images"
	}

	return filepath.Join(filepath.Dir(metadataPath), "images")
}
