// Command vectorlited serves a vectorlite Database over HTTP.
package main

import (
	"flag"
	"log"
	"net/http"
	"time"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	maxCollections := flag.Int("max-collections", 100, "maximum number of collections")
	metrics := flag.Bool("metrics", true, "enable prometheus metrics")
	flag.Parse()

	srv, err := newServer(*addr, *maxCollections, *metrics)
	if err != nil {
		log.Fatalf("vectorlited: %v", err)
	}

	log.Printf("vectorlited: listening on %s", *addr)
	httpServer := &http.Server{
		Addr:         *addr,
		Handler:      srv.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("vectorlited: %v", err)
	}
}
