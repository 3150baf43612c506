package viewer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"github.com/lizard045/Evolutionary-Computation/internal/cpm"
	"github.com/lizard045/Evolutionary-Computation/internal/evaluator"
	"github.com/lizard045/Evolutionary-Computation/internal/graph"
	"github.com/lizard045/Evolutionary-Computation/internal/loader"
	"github.com/lizard045/Evolutionary-Computation/internal/schedule"
	"github.com/lizard045/Evolutionary-Computation/internal/store"
)

// Options configures a Server.
type Options struct {
	Lenient bool         // default for POST /api/evaluate
	Store   *store.Store // enables GET /api/history when set
}

// Server exposes a loaded problem and its evaluated candidates over HTTP.
type Server struct {
	graph *graph.Graph
	bound *cpm.CPMResult
	opts  Options

	mu      sync.RWMutex
	results []*evaluator.Result
}

type problemResponse struct {
	Tasks        int          `json:"tasks"`
	Processors   int          `json:"processors"`
	Costs        []float64    `json:"costs"`
	Edges        []graph.Edge `json:"edges"`
	Levels       [][]int      `json:"levels"`
	Bound        float64      `json:"bound"`
	CriticalPath []int        `json:"critical_path"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// New creates a Server for g and the already evaluated results.
func New(g *graph.Graph, results []*evaluator.Result, opts Options) *Server {
	return &Server{
		graph:   g,
		bound:   cpm.Analyze(g),
		opts:    opts,
		results: results,
	}
}

// Router builds the gin engine with all API routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/problem", s.handleProblem)
		api.GET("/results", s.handleResults)
		api.POST("/evaluate", s.handleEvaluate)
		api.GET("/history", s.handleHistory)
	}
	return router
}

// Run serves the API on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleProblem(c *gin.Context) {
	c.JSON(http.StatusOK, problemResponse{
		Tasks:        s.graph.TaskCount(),
		Processors:   s.graph.Processors(),
		Costs:        s.graph.Costs(),
		Edges:        s.graph.Edges(),
		Levels:       s.graph.Levels(),
		Bound:        s.bound.TotalDuration,
		CriticalPath: s.bound.CriticalPath,
	})
}

func (s *Server) handleResults(c *gin.Context) {
	s.mu.RLock()
	results := s.results
	s.mu.RUnlock()

	if results == nil {
		results = []*evaluator.Result{}
	}
	c.JSON(http.StatusOK, gin.H{
		"best":    evaluator.Best(results),
		"results": results,
	})
}

// handleEvaluate evaluates a single schedule from the request body. The body
// uses the same object shape as a schedules file entry plus an optional
// "lenient" flag.
func (s *Server) handleEvaluate(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "bad_request"})
		return
	}
	if !gjson.ValidBytes(body) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "request body is not valid JSON", Kind: "bad_request"})
		return
	}

	doc := gjson.ParseBytes(body)
	sched, err := loader.ScheduleFromJSON(doc, s.graph.Processors())
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: errorKind(err)})
		return
	}
	if sched.Name == "" {
		sched.Name = "request"
	}

	opts := evaluator.Options{Lenient: s.opts.Lenient}
	if lenient := doc.Get("lenient"); lenient.Exists() {
		opts.Lenient = lenient.Bool()
	}

	res, err := evaluator.Evaluate(s.graph, &sched, opts)
	if err != nil {
		status := http.StatusBadRequest
		if errorKind(err) == "internal" {
			status = http.StatusInternalServerError
			log.Printf("warning: evaluate %s: %v", sched.Name, err)
		}
		c.JSON(status, errorResponse{Error: err.Error(), Kind: errorKind(err)})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleHistory(c *gin.Context) {
	if s.opts.Store == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no run archive configured", Kind: "not_found"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer", Kind: "bad_request"})
		return
	}

	var records []store.Record
	if c.Query("best") == "true" {
		records, err = s.opts.Store.Best(limit)
	} else {
		records, err = s.opts.Store.Recent(limit)
	}
	if err != nil {
		log.Printf("warning: history: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error(), Kind: "internal"})
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, schedule.ErrInvalidSchedule):
		return "invalid_schedule"
	case errors.Is(err, graph.ErrInvalidGraph):
		return "invalid_graph"
	default:
		return "internal"
	}
}
