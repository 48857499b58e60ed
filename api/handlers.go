package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"property-harvester/models"
	"property-harvester/utils"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	listings, err := s.load()
	if err != nil {
		s.fail(w, err)
		return
	}

	q := r.URL.Query()
	minPrice, ok := parseFloatParam(w, q.Get("min_price"), "min_price")
	if !ok {
		return
	}
	maxPrice, ok := parseFloatParam(w, q.Get("max_price"), "max_price")
	if !ok {
		return
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	city := strings.TrimSpace(q.Get("city"))

	out := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if city != "" && !strings.EqualFold(strings.TrimSpace(l.City), city) {
			continue
		}
		if minPrice > 0 && l.Price < minPrice {
			continue
		}
		if maxPrice > 0 && l.Price > maxPrice {
			continue
		}
		out = append(out, l)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	listings, err := s.load()
	if err != nil {
		s.fail(w, err)
		return
	}
	for _, l := range listings {
		if l.ID == id {
			writeJSON(w, http.StatusOK, l)
			return
		}
	}
	writeError(w, http.StatusNotFound, "property not found")
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	listings, err := s.load()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.insights.Generate(listings))
}

func (s *Server) handleDataFile(w http.ResponseWriter, r *http.Request) {
	if s.dataPath == "" {
		writeError(w, http.StatusNotFound, "no data file configured")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	http.ServeFile(w, r, s.dataPath)
}

// load reads every listing, keeping the first occurrence of each id.
func (s *Server) load() ([]*models.Listing, error) {
	listings, err := s.reader.FetchAll()
	if err != nil {
		return nil, err
	}
	seen := utils.NewIDSet()
	out := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if l == nil {
			continue
		}
		if l.ID != "" && !seen.Add(l.ID) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.logger.Error("[api] read listings: %v", err)
	writeError(w, http.StatusInternalServerError, "failed to read listings")
}

func parseFloatParam(w http.ResponseWriter, v, name string) (float64, bool) {
	if v == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		writeError(w, http.StatusBadRequest, name+" must be a non-negative number")
		return 0, false
	}
	return f, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
