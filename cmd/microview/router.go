package main

import (
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/interpose/middleware"
	"github.com/justinas/alice"
)

func router(config *Global) (http.Handler, error) {
	router := mux.NewRouter()
	POST := router.Methods("POST").Subrouter()
	GET := router.Methods("GET", "HEAD").Subrouter()

	h := &handler{Global: config, router: router}

	GET.HandleFunc("/", h.Index).Name("index")
	GET.HandleFunc("/image/{index:[0-9]+}", h.Image).Name("image")
	GET.HandleFunc("/thumb/{index:[0-9]+}", h.Thumb).Name("thumb")
	GET.HandleFunc("/api/rows", h.APIRows)
	GET.HandleFunc("/api/rows/{index:[0-9]+}", h.APIRow)
	GET.HandleFunc("/api/facets", h.APIFacets)
	GET.HandleFunc("/download.csv", h.DownloadCSV)
	GET.HandleFunc("/summary", h.Summary).Name("summary")
	GET.HandleFunc("/chart/{field}.png", h.Chart)
	GET.HandleFunc("/version", h.Version)
	GET.HandleFunc("/goroutines", h.Goroutines)

	//
	// POST
	//
	// The viewer is read-only.
	POST.Handle("/", http.NotFoundHandler())

	assetFilesystem, err := fs.Sub(embeddedTemplates, "templates/static")
	if err != nil {
		return nil, err
	}

	// Static assets
	GET.PathPrefix(h.Assets()).Handler(
		middleware.MaxAgeHandler(60*60*24*364,
			http.StripPrefix(h.Assets(), http.FileServer(http.FS(assetFilesystem)))))

	standard := alice.New(
		// Log all requests to STDOUT
		middleware.GorillaLog(),
	)

	return standard.Then(router), nil
}
