package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/notify"
	"github.com/adanyl0v/go-task-tracker/internal/services"
)

type Handler interface {
	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleMe(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleGetTasks(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleGetDashboard(c *gin.Context)
	HandleGetNotifications(c *gin.Context)
}

// NotificationFeed hands out the notifications produced since the last call.
type NotificationFeed interface {
	Drain() []notify.Notification
}

type handlerImpl struct {
	logger   zerolog.Logger
	sessions services.SessionService
	tasks    services.TaskService
	tokens   services.TokenService
	feed     NotificationFeed
	now      func() time.Time
}

func New(
	logger zerolog.Logger,
	sessionService services.SessionService,
	taskService services.TaskService,
	tokenService services.TokenService,
	feed NotificationFeed,
) Handler {
	return &handlerImpl{
		logger:   logger,
		sessions: sessionService,
		tasks:    taskService,
		tokens:   tokenService,
		feed:     feed,
		now:      time.Now,
	}
}

func RegisterRoutes(router gin.IRouter, h Handler) {
	router = router.Group("/api/v1")

	authRouter := router.Group("/auth")
	authRouter.POST("/register", h.HandleRegister)
	authRouter.POST("/login", h.HandleLogin)
	authRouter.POST("/logout", h.HandleAuthMiddleware, h.HandleLogout)
	authRouter.GET("/me", h.HandleAuthMiddleware, h.HandleMe)

	protected := router.Group("", h.HandleAuthMiddleware)

	tasksRouter := protected.Group("/tasks")
	tasksRouter.GET("", h.HandleGetTasks)
	tasksRouter.POST("", h.HandleCreateTask)
	tasksRouter.GET("/:id", h.HandleGetTask)
	tasksRouter.PATCH("/:id", h.HandleUpdateTask)
	tasksRouter.DELETE("/:id", h.HandleDeleteTask)

	protected.GET("/dashboard", h.HandleGetDashboard)
	protected.GET("/notifications", h.HandleGetNotifications)
}
