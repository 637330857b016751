// Package playground exposes the compiler pipeline over HTTP: a synchronous
// POST /api/compile for the common case, an async POST /api/compile/async
// backed by a Postgres job queue for callers that want to fire-and-poll, and
// GET /api/history to review recent runs. It is built on the same
// router/auth/server stack used elsewhere in this codebase rather than a
// bespoke HTTP layer.
package playground

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lumen-lang/lumen/internal/cache"
	"github.com/lumen-lang/lumen/internal/compiler/pipeline"
	"github.com/lumen-lang/lumen/internal/diagnostics"
	"github.com/lumen-lang/lumen/internal/web/auth"
	"github.com/lumen-lang/lumen/internal/web/jobs"
	"github.com/lumen-lang/lumen/internal/web/middleware"
	"github.com/lumen-lang/lumen/internal/web/profiling"
	"github.com/lumen-lang/lumen/internal/web/ratelimit"
	"github.com/lumen-lang/lumen/internal/web/request"
	"github.com/lumen-lang/lumen/internal/web/router"
	"github.com/lumen-lang/lumen/internal/web/websocket"
)

const compileQueue = "compile"

// maxCompileBodyBytes caps the size of a compile request body; source files
// this large are almost certainly not hand-written Lumen programs.
const maxCompileBodyBytes = 1 << 20 // 1MB

// Server wires the compiler pipeline into an HTTP API.
type Server struct {
	router *router.Router
	hub    *websocket.Hub
	parser *request.Parser

	cache       *cache.Cache // nil disables caching
	store       *diagnostics.Store
	jobs        *jobs.Queue // nil disables the async endpoint
	authService *auth.AuthService
}

// New builas a playground Server. cacheClient and jobQueue may be nil to
// disable caching and async compilation respectively.
func New(store *diagnostics.Store, cacheClient *cache.Cache, jobQueue *jobs.Queue, authService *auth.AuthService) *Server {
	hub := websocket.NewHub(context.Background())
	hub.RegisterHandler("compile", handleCompileMessage)
	go hub.Run()

	s := &Server{
		router:      router.NewRouter(),
		hub:         hub,
		parser:      request.NewParserWithMaxSize(maxCompileBodyBytes),
		cache:       cacheClient,
		store:       store,
		jobs:        jobQueue,
		authService: authService,
	}

	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.Compression())
	s.router.Use(middleware.Logging())
	s.router.Use(middleware.RateLimit(ratelimit.NewTokenBucket()))
	s.router.Use(middleware.Conditional(middleware.PathPrefix("/api/compile"), middleware.Timeout(10*time.Second)))
	if authService != nil {
		s.router.Use(middleware.Auth(authService))
	}

	s.router.Post("/api/compile", s.handleCompile).WithResource("lumen.compile", router.OpCompile)
	s.router.Get("/api/history", s.handleHistory).WithResource("lumen.history", router.OpHistory)
	s.router.Get("/api/routes", s.handleRoutes).WithResource("lumen.routes", router.OpRoutes)
	if jobQueue != nil {
		s.router.Post("/api/compile/async", s.handleCompileAsync).WithResource("lumen.compile", router.OpCompileAsync)
		s.router.Get("/api/compile/async/{id}", s.handleCompileAsyncStatus).WithResource("lumen.compile", router.OpCompileStatus)
	}

	upgrader := websocket.NewUpgrader(nil, hub)
	s.router.Get("/ws/compile", upgrader.ServeHTTP).WithResource("lumen.compile", router.OpCompileStream)

	return s
}

// handleCompileMessage handles a "compile" message sent over the /ws/compile
// socket: its Data is {"source": "..."}, and the reply is a "compile.result"
// message carrying a compileResponse.
func handleCompileMessage(ctx context.Context, client *websocket.Client, message *websocket.Message) error {
	var req compileRequest
	if err := json.Unmarshal(message.Data, &req); err != nil {
		client.SendError("invalid compile message: " + err.Error())
		return nil
	}

	result := pipeline.Compile(req.Source)
	return client.SendJSON("compile.result", compileResponse{
		Ok:          result.Ok,
		Output:      result.Output,
		Diagnostics: result.Diagnostics,
	})
}

// Shutdown stops the websocket hub's broadcast loop and closes its clients.
func (s *Server) Shutdown() {
	s.hub.Shutdown()
}

// EnableProfiling mounts pprof's index/cmdline/profile/symbol/trace/heap/
// goroutine/etc. handlers under /debug/pprof. Off by default: these expose
// goroutine stacks and memory contents, so callers should only enable this
// on an operator-only listener.
func (s *Server) EnableProfiling() {
	s.router.Group("/", func(r chi.Router) {
		profiling.RegisterRoutes(r, profiling.DefaultConfig())
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type compileRequest struct {
	Source string `json:"source"`
}

type compileResponse struct {
	Ok          bool                  `json:"ok"`
	Output      string                `json:"output,omitempty"`
	Diagnostics []pipeline.Diagnostic `json:"diagnostics,omitempty"`
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var req compileRequest
	if err := s.parser.ParseJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := s.compile(r.Context(), req.Source)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.recordRun(r.Context(), req.Source, result)
	writeJSON(w, http.StatusOK, compileResponse{Ok: result.Ok, Output: result.Output, Diagnostics: result.Diagnostics})
}

// handleRoutes exposes the router's own introspection data, so the resource
// metadata attached via WithResource is actually observable over HTTP rather
// than sitting unread on each Route.
func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.router.GetRoutes())
}

func (s *Server) compile(ctx context.Context, source string) (pipeline.Result, error) {
	if s.cache != nil {
		return s.cache.CompileCached(ctx, source)
	}
	return pipeline.Compile(source), nil
}

func (s *Server) recordRun(ctx context.Context, source string, result pipeline.Result) {
	if s.store == nil {
		return
	}
	run := diagnostics.Run{SourceHash: cache.HashSource(source), Stage: "ok", UserID: auth.GetCurrentUser(ctx), CompiledAt: time.Now()}
	if !result.Ok {
		d := result.Diagnostics[0]
		run.Stage = string(d.Stage)
		run.Message = d.Message
		run.Line = d.Line
		run.Column = d.Column
	}
	_, _ = s.store.Record(ctx, run)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "history is not enabled"})
		return
	}

	params := router.NewParamExtractor(r)
	page := params.ExtractPagination(50, 200)
	stage, _ := params.ExtractFilters([]string{"stage"})["stage"].(string)

	runs, err := s.store.RecentOffset(r.Context(), page.PerPage, page.Offset, stage)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// handleCompileAsync enqueues a compile job and returns its ID immediately;
// a caller polls handleCompileAsyncStatus for the result.
func (s *Server) handleCompileAsync(w http.ResponseWriter, r *http.Request) {
	var req compileRequest
	if err := s.parser.ParseJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	executor := jobs.NewAsyncExecutor(s.jobs)
	id, err := executor.ExecuteJob(r.Context(), compileQueue, "compile.source", map[string]interface{}{"source": req.Source})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"id": id.String()})
}

func (s *Server) handleCompileAsyncStatus(w http.ResponseWriter, r *http.Request) {
	idStr := router.GetPathParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid job id"})
		return
	}

	job, err := s.jobs.GetJob(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// CompileJobHandler runs a "compile.source" job's payload through the
// compiler and records the result, in the shape jobs.WorkerPool expects from
// a registered jobs.Handler.
func (s *Server) CompileJobHandler(ctx context.Context, payload map[string]interface{}) error {
	source, _ := payload["source"].(string)
	result, err := s.compile(ctx, source)
	if err != nil {
		return err
	}
	s.recordRun(ctx, source, result)
	return nil
}

// RunWorker pulls compile jobs off the queue and runs them through
// CompileJobHandler, one at a time, until ctx is cancelled. Kept as a
// single-goroutine alternative to a jobs.WorkerPool for callers that want
// manual control over worker lifecycle.
func (s *Server) RunWorker(ctx context.Context, workerID string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		job, err := s.jobs.Dequeue(ctx, workerID, compileQueue)
		if err != nil {
			return err
		}
		if job == nil {
			time.Sleep(200 * time.Millisecond)
			continue
		}

		if err := s.CompileJobHandler(ctx, job.Payload); err != nil {
			_ = s.jobs.Fail(ctx, job.ID, err.Error())
			continue
		}
		_ = s.jobs.Complete(ctx, job.ID)
	}
}

// MigrateJobsTable creates the jobs table jobs.Queue expects, when backed
// by Postgres — the teacher's original schema shipped via migration files
// this tree no longer carries.
func MigrateJobsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS jobs (
			id UUID PRIMARY KEY,
			queue TEXT NOT NULL,
			type TEXT NOT NULL,
			payload JSONB NOT NULL,
			status TEXT NOT NULL,
			priority INTEGER NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			max_attempts INTEGER NOT NULL DEFAULT 3,
			error TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			run_at TIMESTAMPTZ NOT NULL,
			started_at TIMESTAMPTZ,
			completed_at TIMESTAMPTZ,
			locked_by TEXT,
			locked_at TIMESTAMPTZ
		)
	`)
	return err
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
