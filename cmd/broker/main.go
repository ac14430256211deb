// Command broker runs the signaling rendezvous service that pairs two
// renderer peers for a direct WebRTC connection, per spec §4.K and §6.
package main

import (
	"flag"
	"net/http"
	"os"
	"strconv"

	"github.com/nwillc/raydist/pkg/rlog"
	"github.com/nwillc/raydist/pkg/signaling"
)

func main() {
	port := flag.Int("port", 8082, "Port to serve the signaling socket on")
	path := flag.String("path", "/signal", "Path to serve the signaling socket on")
	flag.Parse()

	log := rlog.New()
	broker := signaling.NewBroker(log)

	mux := http.NewServeMux()
	mux.Handle(*path, broker)

	addr := ":" + strconv.Itoa(*port)
	log.Printf("Signaling broker listening on %s%s\n", addr, *path)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("broker: server error: %v\n", err)
		os.Exit(1)
	}
}
