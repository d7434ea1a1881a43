package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-tracker/internal/query"
)

func (h *handlerImpl) HandleGetDashboard(c *gin.Context) {
	dashboard := query.Summarize(h.tasks.Tasks(), h.now())
	c.JSON(http.StatusOK, dashboard)
}

func (h *handlerImpl) HandleGetNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, h.feed.Drain())
}
