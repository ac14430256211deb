// Command tileworker exposes a scene over HTTP as a remote render worker,
// per spec §4.G and §6.
package main

import (
	"flag"
	"image/png"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/nwillc/raydist/pkg/camera"
	"github.com/nwillc/raydist/pkg/fixedscene"
	"github.com/nwillc/raydist/pkg/job"
	"github.com/nwillc/raydist/pkg/pixel"
	"github.com/nwillc/raydist/pkg/rlog"
	"github.com/nwillc/raydist/pkg/scene"
)

func main() {
	port := flag.Int("port", 8081, "port to serve the tile worker on")
	flag.Parse()

	log := rlog.New()
	sc := fixedscene.New()

	r := mux.NewRouter()
	r.HandleFunc("/ping", handlePing).Methods(http.MethodGet)
	r.HandleFunc("/{x}/{y}/{w}/{h}/{camera_w}/{camera_h}/{n_samples}/{n_recursion}", renderHandler(sc, log)).Methods(http.MethodGet)

	addr := ":" + strconv.Itoa(*port)
	log.Printf("tileworker listening on %s\n", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Printf("tileworker: server error: %v\n", err)
	}
}

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

func renderHandler(sc *scene.Scene, log rlog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		fields := []string{"x", "y", "w", "h", "camera_w", "camera_h", "n_samples", "n_recursion"}
		var ints [8]uint32
		for i, f := range fields {
			n, err := strconv.ParseUint(vars[f], 10, 32)
			if err != nil {
				http.Error(w, "invalid path segment "+f, http.StatusBadRequest)
				return
			}
			ints[i] = uint32(n)
		}

		j, err := job.FromInts(ints[:])
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := j.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		plane := pixel.NewPlane(int(j.W), int(j.H))
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		if err := camera.RenderTile(sc, j, plane, rng); err != nil {
			log.Printf("tileworker: render failed for %+v: %v\n", j, err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.WriteHeader(http.StatusOK)
		png.Encode(w, pixel.ToRGBA(plane))
	}
}
