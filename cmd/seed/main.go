package main

import (
	"context"
	"flag"
	"log"

	"github.com/meur/buildforge/internal/catalog"
	"github.com/meur/buildforge/internal/storage"
)

func main() {
	dbPath := flag.String("db", "./buildforge.db", "SQLite database path")
	catalogPath := flag.String("catalog", "./seeds/item.json", "Item catalog JSON (data dragon item.json or a flat id map)")
	version := flag.String("version", "", "Catalog version, overrides the one in the file")
	flag.Parse()

	store, err := storage.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	file, err := catalog.LoadFile(*catalogPath)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", *catalogPath, err)
	}

	v := file.Version
	if *version != "" {
		v = *version
	}
	if v == "" {
		v = "local"
	}

	if err := store.ReplaceCatalog(context.Background(), v, file.Items); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	// Resolve every tree once so broken recipes show up at seed time
	cat := catalog.New(file.Items, catalog.WithVersion(v))
	for _, it := range cat.Items() {
		catalog.ResolveComponentTree(it, cat)
	}

	log.Printf("✓ Seeded %d items (version %s)", len(file.Items), v)
	log.Println("🌱 Seeding complete!")
}
