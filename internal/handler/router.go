package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/acadplan-api/internal/middleware"
	"github.com/noah-isme/acadplan-api/internal/models"
	"github.com/noah-isme/acadplan-api/internal/repository"
	"github.com/noah-isme/acadplan-api/internal/service"
	appErrors "github.com/noah-isme/acadplan-api/pkg/errors"
	"github.com/noah-isme/acadplan-api/pkg/response"
)

// Handlers groups every HTTP handler for route registration.
type Handlers struct {
	Auth       *AuthHandler
	Period     *PeriodHandler
	Program    *ProgramHandler
	Module     *ModuleHandler
	Activity   *ActivityHandler
	Indicator  *IndicatorHandler
	Result     *ResultHandler
	Preference *PreferenceHandler
	Export     *ExportHandler
}

// RegisterRoutes mounts the API surface under the given prefix. The
// template download stays public; everything else under the prefix
// requires a session token. Write operations are restricted to admin
// and coordinator roles.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, authService *service.AuthService, userRepo *repository.UserRepository) {
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		response.Error(c, appErrors.New("METHOD_NOT_ALLOWED", 405, "method not allowed"))
	})
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
	})

	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/logout", middleware.JWT(authService), h.Auth.Logout)
		auth.POST("/change-password", middleware.JWT(authService), h.Auth.ChangePassword)
	}

	// Public template download, no session needed.
	api.GET("/programs/template", h.Export.Template)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	write := middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator)

	periods := protected.Group("/periods")
	{
		periods.GET("", h.Period.List)
		periods.GET("/active", h.Period.GetActive)
		periods.GET("/:id", h.Period.Get)
		periods.POST("", write, h.Period.Create)
		periods.POST("/set-active", write, middleware.Audit(userRepo, models.AuditActionPeriodActivate, "periods"), h.Period.SetActive)
		periods.PUT("/:id", write, h.Period.Update)
		periods.DELETE("/:id", write, h.Period.Delete)
	}

	programs := protected.Group("/programs")
	{
		programs.GET("", h.Program.List)
		programs.GET("/:id", h.Program.Get)
		programs.GET("/:id/report", h.Export.ProgramReport)
		programs.POST("", write, h.Program.Create)
		programs.PUT("/:id", write, h.Program.Update)
		programs.DELETE("/:id", write, h.Program.Delete)
	}

	modules := protected.Group("/modules")
	{
		modules.GET("", h.Module.List)
		modules.GET("/:id", h.Module.Get)
		modules.POST("", write, h.Module.Create)
		modules.PUT("/:id", write, h.Module.Update)
		modules.DELETE("/:id", write, h.Module.Delete)
	}

	activities := protected.Group("/activities")
	{
		activities.GET("", h.Activity.List)
		activities.GET("/:id", h.Activity.Get)
		activities.POST("", write, h.Activity.Create)
		activities.PUT("/:id", write, h.Activity.Update)
		activities.DELETE("/:id", write, h.Activity.Delete)
	}

	indicators := protected.Group("/indicators")
	{
		indicators.GET("", h.Indicator.List)
		indicators.GET("/:id", h.Indicator.Get)
		indicators.POST("", write, h.Indicator.Create)
		indicators.PUT("/:id", write, h.Indicator.Update)
		indicators.DELETE("/:id", write, h.Indicator.Delete)
	}

	results := protected.Group("/results")
	{
		results.GET("", h.Result.List)
		results.GET("/:id", h.Result.Get)
		results.POST("", write, h.Result.Create)
		results.PUT("/:id", write, h.Result.Update)
		results.DELETE("/:id", write, h.Result.Delete)
	}

	protected.GET("/user/preferences", h.Preference.Get)
	protected.PUT("/user/preferences", h.Preference.Update)
	protected.GET("/export-data", h.Export.DataExport)
}
