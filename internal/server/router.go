package server

import (
	"log/slog"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grc-center/internal/handlers"
	"grc-center/internal/middleware"
)

const maxMultipartMemory = 32 << 20

type Options struct {
	SessionSecret string
	Logger        *slog.Logger
}

func NewRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()
	r.MaxMultipartMemory = maxMultipartMemory
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(), middleware.RequestLogger(log))

	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, MaxAge: 86400 * 7})
	r.Use(sessions.Sessions(middleware.SessionName, store))
	r.Use(middleware.InjectActor())

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// SESSION
	api.GET("/session/actor", h.CurrentActor)
	api.POST("/session/actor", h.SetActor)
	api.DELETE("/session/actor", h.ClearActor)

	// RISKS
	risks := api.Group("/risks")
	risks.GET("", h.ListRisks)
	risks.POST("", h.CreateRisk)
	risks.GET("/statistics", h.RiskStatistics)
	risks.GET("/heatmap", h.RiskHeatmap)
	risks.POST("/import", h.ImportRisks)
	risks.GET("/export", h.ExportRisks)
	risks.GET("/:id", h.GetRisk)
	risks.PUT("/:id", h.UpdateRisk)
	risks.DELETE("/:id", h.DeleteRisk)

	// CONTROLS
	controls := api.Group("/controls")
	controls.GET("", h.ListControls)
	controls.POST("", h.CreateControl)
	controls.GET("/coverage", h.ControlCoverage)
	controls.GET("/frameworks", h.ListControlFrameworks)
	controls.POST("/frameworks/initialize", h.InitControlFrameworks)
	controls.GET("/:id", h.GetControl)
	controls.PUT("/:id", h.UpdateControl)
	controls.GET("/:id/mappings", h.ControlMappings)
	controls.POST("/:id/mappings", h.MapControl)

	// COMPLIANCE
	compliance := api.Group("/compliance")
	compliance.GET("/dashboard", h.ComplianceDashboard)
	compliance.GET("/frameworks", h.ListComplianceFrameworks)
	compliance.POST("/frameworks/initialize", h.InitComplianceFrameworks)
	compliance.GET("/frameworks/:code", h.GetComplianceFramework)
	compliance.POST("/frameworks/:code/recompute", h.RecomputeFramework)
	compliance.GET("/frameworks/:code/gaps", h.GapAnalysis)
	compliance.GET("/frameworks/:code/requirements", h.ListRequirements)
	compliance.POST("/frameworks/:code/requirements", h.CreateRequirement)
	compliance.PUT("/frameworks/:code/requirements/:req", h.UpdateRequirementStatus)

	// VENDORS
	vendors := api.Group("/vendors")
	vendors.GET("", h.ListVendors)
	vendors.POST("", h.CreateVendor)
	vendors.GET("/distribution", h.VendorDistribution)
	vendors.GET("/:id", h.GetVendor)
	vendors.PUT("/:id", h.UpdateVendor)
	vendors.POST("/:id/recompute", h.RecomputeVendor)
	vendors.GET("/:id/assessments", h.ListAssessments)
	vendors.POST("/:id/assessments", h.CreateAssessment)
	api.GET("/assessments/:id", h.GetAssessment)
	api.POST("/assessments/:id/complete", h.CompleteAssessment)

	// EVIDENCE
	evidence := api.Group("/evidence")
	evidence.GET("", h.ListEvidence)
	evidence.POST("", h.CreateEvidence)
	evidence.POST("/upload", h.UploadEvidence)
	evidence.GET("/summary", h.EvidenceSummary)
	evidence.GET("/collections", h.ListCollections)
	evidence.POST("/collections", h.CreateCollection)
	evidence.GET("/:id", h.GetEvidence)
	evidence.GET("/:id/file", h.DownloadEvidence)
	evidence.POST("/:id/verify", h.VerifyEvidence)

	// DASHBOARD
	dashboard := api.Group("/dashboard")
	dashboard.GET("/overview", h.DashboardOverview)
	dashboard.GET("/trends", h.DashboardTrends)
	dashboard.GET("/kpis", h.DashboardKPIs)
	dashboard.GET("/action-items", h.ActionItems)
	api.POST("/recompute", h.RecomputeAll)

	// INTEGRATIONS
	integ := api.Group("/integrations")
	integ.GET("/health", h.IntegrationsHealth)
	integ.GET("/aws/findings", h.AWSFindings)
	integ.POST("/aws/import", h.ImportAWSFindings)
	integ.GET("/jira/issues", h.JiraIssues)
	integ.POST("/jira/issues", h.CreateJiraIssue)
	integ.GET("/servicenow/incidents", h.ServiceNowIncidents)
	integ.POST("/servicenow/incidents", h.CreateServiceNowIncident)

	// AUDIT
	api.GET("/audit", h.ListAuditLogs)

	return r
}
