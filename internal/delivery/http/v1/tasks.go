package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/query"
	"github.com/adanyl0v/go-task-tracker/internal/services"
)

type getTasksQuery struct {
	Search   string `form:"search" binding:"max=255"`
	Status   string `form:"status"`
	Priority string `form:"priority"`
	SortBy   string `form:"sortBy"`
	Order    string `form:"order"`
}

func (q getTasksQuery) params() query.Params {
	return query.Params{
		Search:   q.Search,
		Status:   query.StatusFilter(q.Status),
		Priority: query.PriorityFilter(q.Priority),
		SortBy:   query.SortKey(q.SortBy),
		Order:    query.Order(q.Order),
	}
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	var req getTasksQuery
	err := c.ShouldBindQuery(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind query")
		abort(c, newBadRequestError(errInvalidQuery.Error()))
		return
	}

	params := req.params()
	err = params.Validate()
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("invalid task query")
		abort(c, newBadRequestError(err.Error()))
		return
	}

	tasks := query.Apply(h.tasks.Tasks(), params, h.now())
	h.logger.Debug().
		Int("count", len(tasks)).
		Msg("selected tasks")

	c.JSON(http.StatusOK, tasks)
}

type createTaskRequest struct {
	Title       string `json:"title" form:"title" binding:"required,max=255"`
	Description string `json:"description" form:"description" binding:"required"`
	Status      string `json:"status" form:"status"`
	Priority    string `json:"priority" form:"priority"`
	DueDate     string `json:"dueDate" form:"dueDate" binding:"required"`
	// Tags is comma-separated text, as typed into the task form.
	Tags string `json:"tags" form:"tags"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	var req createTaskRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	dueDate, err := models.ParseDueDate(req.DueDate)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("due_date", req.DueDate).
			Msg("failed to parse due date")
		abort(c, newBadRequestError(errInvalidDueDate.Error()))
		return
	}

	fields := models.TaskFields{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.StatusPending,
		Priority:    models.PriorityMedium,
		DueDate:     dueDate,
		Tags:        models.ParseTags(req.Tags),
	}
	if req.Status != "" {
		fields.Status = models.Status(req.Status)
	}
	if req.Priority != "" {
		fields.Priority = models.Priority(req.Priority)
	}

	task, err := h.tasks.Add(c, fields)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	taskID := c.Param("id")
	task, ok := h.tasks.GetByID(taskID)
	if !ok {
		h.logger.Warn().
			Str("task_id", taskID).
			Msg("task not found")
		abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
		return
	}

	c.JSON(http.StatusOK, task)
}

type updateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
	Tags        *string `json:"tags,omitempty"`
}

func (r updateTaskRequest) patch() (models.TaskPatch, error) {
	var patch models.TaskPatch
	patch.Title = r.Title
	patch.Description = r.Description
	if r.Status != nil {
		status := models.Status(*r.Status)
		patch.Status = &status
	}
	if r.Priority != nil {
		priority := models.Priority(*r.Priority)
		patch.Priority = &priority
	}
	if r.DueDate != nil {
		dueDate, err := models.ParseDueDate(*r.DueDate)
		if err != nil {
			return models.TaskPatch{}, err
		}
		patch.DueDate = &dueDate
	}
	if r.Tags != nil {
		tags := models.ParseTags(*r.Tags)
		patch.Tags = &tags
	}
	return patch, nil
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	patch, err := req.patch()
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to parse due date")
		abort(c, newBadRequestError(errInvalidDueDate.Error()))
		return
	}

	taskID := c.Param("id")
	if patch.IsEmpty() {
		h.logger.Warn().
			Str("task_id", taskID).
			Msg("no fields to update")
		h.HandleGetTask(c)
		return
	}

	task, err := h.tasks.Update(c, taskID, patch)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	taskID := c.Param("id")
	err := h.tasks.Delete(c, taskID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		abort(c, newServiceError(err))
		return
	}

	userID, _ := getStringFromContext(c, userIDCtxKey)
	h.logger.Info().
		Str("task_id", taskID).
		Str("user_id", userID).
		Msg("deleted task")
	c.Status(http.StatusNoContent)
}
