package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/go-sphere-pathtracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	configDir := flag.String("configs", "configs", "Directory of render config files offered as scenes")
	flag.Parse()

	webServer := server.NewServer(*port, *configDir)

	log.Printf("Sphere Path Tracer Web Server")
	log.Printf("Visit http://localhost:%d to start rendering", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
