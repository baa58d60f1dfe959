package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
	"github.com/papl-tools/papl-assistant/internal/core/ports"
	"github.com/papl-tools/papl-assistant/internal/observability/metrics"
)

type Options struct {
	Service        string
	DefaultBudget  int
	RateLimitRPS   float64
	RateLimitBurst int
	Metrics        *metrics.HTTPServerMetrics
}

type Router struct {
	search        ports.SearchService
	contextSvc    ports.ContextService
	answer        ports.AnswerService
	admin         ports.CorpusAdmin
	conversations ports.ConversationReader
	opts          Options
}

func NewRouter(
	search ports.SearchService,
	contextSvc ports.ContextService,
	answer ports.AnswerService,
	admin ports.CorpusAdmin,
	conversations ports.ConversationReader,
	opts Options,
) *Router {
	if opts.Service == "" {
		opts.Service = "api"
	}
	if opts.DefaultBudget <= 0 {
		opts.DefaultBudget = 4000
	}
	return &Router{
		search:        search,
		contextSvc:    contextSvc,
		answer:        answer,
		admin:         admin,
		conversations: conversations,
		opts:          opts,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/search", rt.handleSearch)
	mux.HandleFunc("/v1/context", rt.handleContext)
	mux.HandleFunc("/v1/answer", rt.handleAnswer)
	mux.HandleFunc("/v1/corpus/reload", rt.handleReload)
	mux.HandleFunc("/v1/conversations/", rt.handleConversation)

	var handler http.Handler = mux
	if rt.opts.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.opts.RateLimitRPS, rt.opts.RateLimitBurst)
	}
	if rt.opts.Metrics != nil {
		handler = rt.opts.Metrics.Middleware(rt.opts.Service, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type searchRequest struct {
	Query       string  `json:"query"`
	Semantic    bool    `json:"semantic"`
	MaxResults  int     `json:"max_results"`
	BlendWeight float64 `json:"blend_weight"`
	Region      string  `json:"region"`
	Category    string  `json:"category"`
	Framework   string  `json:"framework"`
}

func (req searchRequest) options() domain.SearchOptions {
	return domain.SearchOptions{
		Semantic:    req.Semantic,
		MaxResults:  req.MaxResults,
		BlendWeight: req.BlendWeight,
		Region:      req.Region,
		Category:    req.Category,
		Framework:   req.Framework,
	}
}

func (rt *Router) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	outcome, err := rt.search.Search(r.Context(), req.Query, req.options())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	if rt.opts.Metrics != nil {
		rt.opts.Metrics.RecordSearch(
			rt.opts.Service, "search",
			string(outcome.Intent.Kind), string(outcome.Mode),
			len(outcome.Results), time.Since(start),
		)
	}
	writeJSON(w, http.StatusOK, outcome)
}

type contextRequest struct {
	searchRequest
	Budget int `json:"budget"`
}

func (rt *Router) handleContext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req contextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Budget <= 0 {
		req.Budget = rt.opts.DefaultBudget
	}

	block, err := rt.contextSvc.AnswerContext(r.Context(), req.Query, req.options(), req.Budget)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	if rt.opts.Metrics != nil {
		rt.opts.Metrics.RecordContextSize(rt.opts.Service, "context", block.Size)
	}
	writeJSON(w, http.StatusOK, block)
}

type answerRequest struct {
	searchRequest
	Question       string `json:"question"`
	ConversationID string `json:"conversation_id"`
	Budget         int    `json:"budget"`
}

func (rt *Router) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		question = strings.TrimSpace(req.Query)
	}
	if req.Budget <= 0 {
		req.Budget = rt.opts.DefaultBudget
	}

	answer, err := rt.answer.Answer(r.Context(), req.ConversationID, question, req.options(), req.Budget)
	if err != nil {
		if rt.opts.Metrics != nil {
			rt.opts.Metrics.RecordAnswer(rt.opts.Service, "error")
		}
		rt.writeError(w, r, err)
		return
	}

	if rt.opts.Metrics != nil {
		outcome := "answered"
		if len(answer.Context.Entries) == 0 {
			outcome = "no_context"
		}
		rt.opts.Metrics.RecordAnswer(rt.opts.Service, outcome)
	}
	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	report, err := rt.admin.Reload(r.Context())
	if err != nil {
		// A partial reload still reports what was swapped in.
		if report != nil {
			writeJSON(w, http.StatusAccepted, map[string]any{
				"report": report,
				"error":  err.Error(),
			})
			return
		}
		rt.writeError(w, r, err)
		return
	}

	if rt.opts.Metrics != nil {
		rt.opts.Metrics.RecordCorpusReload(report.Documents, report.Pending)
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) handleConversation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/conversations/")
	conversationID, tail, ok := strings.Cut(rest, "/")
	if !ok || tail != "messages" || conversationID == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	exchanges, err := rt.conversations.ListRecent(r.Context(), conversationID, limit)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": conversationID,
		"exchanges":       exchanges,
	})
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	logRequestError(r, status, err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
