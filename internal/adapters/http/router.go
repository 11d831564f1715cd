package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/hydroflow/hydroflow/internal/core/domain"
	"github.com/hydroflow/hydroflow/internal/core/ports"
	"github.com/hydroflow/hydroflow/internal/observability/metrics"
)

type Router struct {
	ingestor   ports.ReportIngestor
	reader     ports.ReportReader
	queryUC    ports.KnowledgeQueryService
	quotations ports.QuotationService
	metrics    *metrics.HTTPServerMetrics
	service    string
	specJSON   []byte
}

func NewRouter(
	ingestor ports.ReportIngestor,
	reader ports.ReportReader,
	queryUC ports.KnowledgeQueryService,
	quotations ports.QuotationService,
	serverMetrics *metrics.HTTPServerMetrics,
	service string,
	specJSON []byte,
) *Router {
	return &Router{
		ingestor:   ingestor,
		reader:     reader,
		queryUC:    queryUC,
		quotations: quotations,
		metrics:    serverMetrics,
		service:    service,
		specJSON:   specJSON,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/reports", rt.uploadReport)
	mux.HandleFunc("/v1/reports/", rt.reportByID)
	mux.HandleFunc("/v1/rag/query", rt.queryRAG)
	mux.HandleFunc("/v1/quotations", rt.generateQuotation)
	mux.HandleFunc("/openapi.json", rt.openapiSpec)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) openapiSpec(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(rt.specJSON)
}

func (rt *Router) uploadReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	report, err := rt.ingestor.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, report)
}

func (rt *Router) reportByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/reports/")
	if id, ok := strings.CutSuffix(rest, "/workflow"); ok {
		rt.workflowState(w, r, strings.TrimSuffix(id, "/"))
		return
	}
	if rest == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "report id is required"})
		return
	}

	report, err := rt.reader.GetByID(r.Context(), rest)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) workflowState(w http.ResponseWriter, r *http.Request, id string) {
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "report id is required"})
		return
	}

	state, err := rt.reader.GetWorkflowState(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if state == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workflow has not run for this report"})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (rt *Router) queryRAG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req domain.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	start := time.Now()
	answer, err := rt.queryUC.Answer(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordRAGObservation(rt.service, "/v1/rag/query", len(answer.Sources), time.Since(start))
	}

	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) generateQuotation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req domain.QuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	quotation, err := rt.quotations.Generate(r.Context(), req)
	if rt.metrics != nil {
		rt.metrics.RecordQuotation(rt.service, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quotation)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
