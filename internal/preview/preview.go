// Package preview renders a tiling preview of a single tile image so seam
// behavior can be inspected before a pipeline run.
package preview

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Saratii/texpack/pkg/tile"
)

// Grid repeats src in an n by n grid, the way the tile repeats across
// terrain in-engine.
func Grid(src *tile.Buffer, n int) (*tile.Buffer, error) {
	if n < 1 {
		return nil, fmt.Errorf("grid size must be at least 1, got %d", n)
	}

	out := tile.NewBuffer(src.Width*n, src.Height*n)
	for gy := 0; gy < n; gy++ {
		for gx := 0; gx < n; gx++ {
			for y := 0; y < src.Height; y++ {
				srcIdx := y * src.Width * 4
				dstIdx := ((gy*src.Height+y)*out.Width + gx*src.Width) * 4
				copy(out.Pix[dstIdx:dstIdx+src.Width*4], src.Pix[srcIdx:srcIdx+src.Width*4])
			}
		}
	}

	return out, nil
}

// Server serves a rendered preview image over HTTP.
type Server struct {
	png       []byte
	width     int
	height    int
	startTime time.Time
}

// NewServer encodes the preview image once and returns a server for it.
func NewServer(img *tile.Buffer) (*Server, error) {
	data, err := tile.EncodePNG(img)
	if err != nil {
		return nil, fmt.Errorf("can't encode preview: %v", err)
	}

	return &Server{
		png:       data,
		width:     img.Width,
		height:    img.Height,
		startTime: time.Now(),
	}, nil
}

// Router returns the chi router exposing the preview endpoints.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Get("/health", s.getHealth)
	r.Get("/preview.png", s.getPreview)

	return r
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    int       `json:"uptime"`
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	response := healthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Uptime:    int(time.Since(s.startTime).Seconds()),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding health response: %v", err)
	}
}

func (s *Server) getPreview(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(s.png)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(s.png); err != nil {
		log.Printf("Error writing preview response: %v", err)
	}
}
