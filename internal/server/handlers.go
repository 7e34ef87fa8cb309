package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aumeinctutw1/cearch/internal/index"
	"github.com/aumeinctutw1/cearch/internal/query"
	"github.com/aumeinctutw1/cearch/internal/tokenize"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Results     []query.Result `json:"results"`
	QueryTimeMs float64        `json:"query_time_ms"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	terms := tokenize.Tokenize(req.Query)
	results := s.engine.Query(terms)
	elapsed := time.Since(start)

	if s.logger != nil {
		s.logger.Debug("query served",
			zap.String("query", req.Query),
			zap.Int("results", len(results)),
			zap.Duration("duration", elapsed))
	}

	if results == nil {
		results = []query.Result{}
	}

	s.respondJSON(w, http.StatusOK, queryResponse{
		Results:     results,
		QueryTimeMs: float64(elapsed.Microseconds()) / 1000.0,
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "docid")
	docid, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "docid must be a positive integer")
		return
	}

	doc, err := s.idx.GetDocument(docid)
	if err != nil {
		if errors.Is(err, index.ErrDocumentNotFound) {
			s.respondError(w, http.StatusNotFound, "document not found")
			return
		}
		if s.logger != nil {
			s.logger.Error("get document failed", zap.Error(err))
		}
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.respondJSON(w, http.StatusOK, doc)
}

type statisticsResponse struct {
	DocumentCount         int `json:"Document_count"`
	TotalTermCount        int `json:"Total_term_count"`
	AverageDocumentLength int `json:"Average_document_length"`
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, statisticsResponse{
		DocumentCount:         s.idx.DocumentCount(),
		TotalTermCount:        s.idx.TotalTermCount(),
		AverageDocumentLength: s.idx.AvgDocLength(),
	})
}

// handleIndexReserved corresponds to the original's unimplemented runtime
// re-index endpoint. Asynchronous runtime indexing is out of scope here;
// the route stays present and explicit about it rather than disappearing.
func (s *Server) handleIndexReserved(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, http.StatusNotImplemented, "runtime indexing is not supported; rebuild the index offline")
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
