package main

import (
	"cloud.google.com/go/storage"
	"github.com/carbocation/microview/imagestore"
	"github.com/carbocation/microview/metadata"
)

type Global struct {
	log           logger
	storageClient *storage.Client

	Site    string
	Company string

	MetadataPath string
	ImageRoot    string
	ThumbWidth   int
	PerRow       int

	// Both are read-only once the server has started.
	table  *metadata.Table
	images *imagestore.Resolver
}

func (g *Global) Table() *metadata.Table {
	return g.table
}

type logger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}
