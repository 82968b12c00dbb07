// Package api implements the REST/Streaming surface (spec.md §6): chat,
// ingest, search, financial, reminders, tasks/projects/knowledge,
// inventory, productivity, proactive, backup, and graph-viz endpoints.
// Server shape (constructor wiring via NewServer, ValidateWiring, ordered route groups,
// aggregated /health) is ported from the teacher's pkg/api/server.go,
// retargeted from alert-investigation sessions to this system's domain
// services.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/rafiq-ai/rafiq/ent"
	"github.com/rafiq-ai/rafiq/pkg/backup"
	"github.com/rafiq-ai/rafiq/pkg/config"
	"github.com/rafiq-ai/rafiq/pkg/database"
	"github.com/rafiq-ai/rafiq/pkg/fileprocessor"
	"github.com/rafiq-ai/rafiq/pkg/graph"
	"github.com/rafiq-ai/rafiq/pkg/graphstore"
	"github.com/rafiq-ai/rafiq/pkg/ingestion"
	"github.com/rafiq-ai/rafiq/pkg/orchestrator"
	"github.com/rafiq-ai/rafiq/pkg/proactive"
	"github.com/rafiq-ai/rafiq/pkg/queue"
	"github.com/rafiq-ai/rafiq/pkg/router"
	"github.com/rafiq-ai/rafiq/pkg/version"
)

// Server is the HTTP API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server

	cfg        *config.Config
	dbClient   *ent.Client
	graph      *graph.Service
	pipeline   *ingestion.Pipeline
	files      *fileprocessor.Processor
	orch       *orchestrator.Orchestrator
	backupSvc  *backup.Service
	proactive  *proactive.Service
	router     *router.Router
	workerPool *queue.WorkerPool
	graphStore *graphstore.Store

	broadcaster *graphBroadcaster
}

// NewServer creates the API server and registers every route.
func NewServer(
	cfg *config.Config,
	dbClient *ent.Client,
	graphSvc *graph.Service,
	pipeline *ingestion.Pipeline,
	files *fileprocessor.Processor,
	orch *orchestrator.Orchestrator,
	backupSvc *backup.Service,
	proactiveSvc *proactive.Service,
	smartRouter *router.Router,
	workerPool *queue.WorkerPool,
	graphStore *graphstore.Store,
) *Server {
	e := echo.New()

	s := &Server{
		echo:       e,
		cfg:        cfg,
		dbClient:   dbClient,
		graph:      graphSvc,
		pipeline:   pipeline,
		files:      files,
		orch:       orch,
		backupSvc:  backupSvc,
		proactive:  proactiveSvc,
		router:     smartRouter,
		workerPool: workerPool,
		graphStore: graphStore,
	}

	s.broadcaster = newGraphBroadcaster()
	s.setupRoutes()
	return s
}

// ValidateWiring checks that every required collaborator is non-nil, so
// a wiring mistake in cmd/rafiq fails fast at startup instead of as a nil
// pointer panic on the first request.
func (s *Server) ValidateWiring() error {
	var errs []error
	if s.dbClient == nil {
		errs = append(errs, fmt.Errorf("dbClient not set"))
	}
	if s.graph == nil {
		errs = append(errs, fmt.Errorf("graph service not set"))
	}
	if s.pipeline == nil {
		errs = append(errs, fmt.Errorf("ingestion pipeline not set"))
	}
	if s.orch == nil {
		errs = append(errs, fmt.Errorf("orchestrator not set"))
	}
	if s.backupSvc == nil {
		errs = append(errs, fmt.Errorf("backup service not set"))
	}
	if s.proactive == nil {
		errs = append(errs, fmt.Errorf("proactive service not set"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("server wiring incomplete: %w", errors.Join(errs...))
	}
	return nil
}

// setupRoutes registers every REST/Streaming surface route (spec.md §6).
func (s *Server) setupRoutes() {
	s.echo.Use(middleware.BodyLimit(20 * 1024 * 1024))

	s.echo.GET("/health", s.healthHandler)

	chat := s.echo.Group("/chat")
	chat.POST("/", s.chatHandler)
	chat.POST("/stream", s.chatStreamHandler)
	chat.GET("/summary", s.chatSummaryHandler)

	ing := s.echo.Group("/ingest")
	ing.POST("/text", s.ingestTextHandler)
	ing.POST("/file", s.ingestFileHandler)
	ing.POST("/url", s.ingestURLHandler)
	ing.GET("/file/:hash", s.ingestFileDownloadHandler)

	s.echo.POST("/search/", s.searchHandler)

	fin := s.echo.Group("/financial")
	fin.GET("/report", s.financialReportHandler)
	fin.GET("/debts", s.financialDebtsHandler)
	fin.POST("/debts/payment", s.financialDebtPaymentHandler)
	fin.GET("/alerts", s.financialAlertsHandler)

	rem := s.echo.Group("/reminders")
	rem.GET("/", s.remindersListHandler)
	rem.POST("/action", s.reminderActionHandler)
	rem.POST("/update", s.reminderUpdateHandler)
	rem.POST("/delete", s.reminderDeleteHandler)
	rem.POST("/delete-all", s.reminderDeleteAllHandler)
	rem.POST("/merge-duplicates", s.reminderMergeDuplicatesHandler)

	tasks := s.echo.Group("/tasks")
	tasks.GET("/", s.tasksListHandler)
	tasks.POST("/update", s.taskUpdateHandler)

	projects := s.echo.Group("/projects")
	projects.GET("/", s.projectsListHandler)
	projects.POST("/update", s.projectUpdateHandler)

	knowledge := s.echo.Group("/knowledge")
	knowledge.GET("/", s.knowledgeListHandler)
	knowledge.POST("/update", s.knowledgeUpdateHandler)

	inv := s.echo.Group("/inventory")
	inv.GET("/", s.inventoryListHandler)
	inv.GET("/summary", s.inventorySummaryHandler)
	inv.POST("/item", s.inventoryItemCreateHandler)
	inv.POST("/item/:name/update", s.inventoryItemUpdateHandler)
	inv.POST("/item/:name/location", s.inventoryItemLocationHandler)
	inv.POST("/item/:name/quantity", s.inventoryItemQuantityHandler)
	inv.GET("/by-file/:hash", s.inventoryByFileHandler)
	inv.GET("/by-barcode/:code", s.inventoryByBarcodeHandler)
	inv.GET("/unused", s.inventoryUnusedHandler)
	inv.GET("/report", s.inventoryReportHandler)
	inv.GET("/duplicates", s.inventoryDuplicatesHandler)
	inv.GET("/search-similar", s.inventorySearchSimilarHandler)

	prod := s.echo.Group("/productivity")
	prod.GET("/sprints", s.sprintsListHandler)
	prod.POST("/sprints", s.sprintUpsertHandler)
	prod.GET("/sprints/:name/burndown", s.sprintBurndownHandler)
	prod.GET("/sprints/velocity", s.sprintVelocityHandler)
	prod.POST("/focus/start", s.focusStartHandler)
	prod.POST("/focus/:id/complete", s.focusCompleteHandler)
	prod.GET("/focus/stats", s.focusStatsHandler)
	prod.POST("/timeblock/suggest", s.timeblockSuggestHandler)
	prod.POST("/timeblock/apply", s.timeblockApplyHandler)

	pro := s.echo.Group("/proactive")
	pro.GET("/morning-summary", s.morningSummaryHandler)
	pro.GET("/noon-checkin", s.noonCheckinHandler)
	pro.GET("/evening-summary", s.eveningSummaryHandler)
	pro.GET("/due-reminders", s.dueRemindersHandler)
	pro.POST("/advance-reminder", s.advanceReminderHandler)
	pro.GET("/stalled-projects", s.stalledProjectsHandler)
	pro.GET("/old-debts", s.oldDebtsHandler)
	pro.POST("/reschedule-persistent", s.reschedulePersistentHandler)

	bak := s.echo.Group("/backup")
	bak.POST("/", s.backupCreateHandler)
	bak.GET("/", s.backupListHandler)
	bak.POST("/restore/:timestamp", s.backupRestoreHandler)

	viz := s.echo.Group("/graph/viz")
	viz.GET("/export", s.graphExportHandler)
	viz.GET("/schema", s.graphSchemaHandler)
	viz.GET("/stats", s.graphStatsHandler)
	viz.GET("/image", s.graphImageHandler)
	viz.GET("/live", s.graphLiveHandler)
}

// Start starts the HTTP server on addr (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.echo}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener, for
// tests that need a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// healthHandler handles GET /health.
func (s *Server) healthHandler(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	dbHealth := database.CheckHealth(reqCtx, s.dbClient)
	status := "healthy"
	if !dbHealth.Reachable {
		status = "unhealthy"
	}

	resp := map[string]any{
		"status":        status,
		"version":       version.Full(),
		"database":      dbHealth,
		"configuration": s.cfg.Stats(),
	}
	if s.workerPool != nil {
		resp["worker_pool"] = s.workerPool.Health()
	}
	if err := s.graphStore.Health(reqCtx); err != nil {
		resp["graph_store_error"] = err.Error()
		status = "degraded"
		resp["status"] = status
	}

	code := http.StatusOK
	if status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}
