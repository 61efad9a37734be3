package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/medcompanion/internal/tasks"
)

// TasksController handles task queue management endpoints.
type TasksController struct {
	queue         TaskQueue
	reader        MedicineReader
	reminders     ReminderLister
	retentionDays int
}

// NewTasksController creates a new TasksController.
func NewTasksController(queue TaskQueue, reader MedicineReader, reminders ReminderLister, retentionDays int) *TasksController {
	return &TasksController{queue: queue, reader: reader, reminders: reminders, retentionDays: retentionDays}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// ListTaskTypes handles GET /api/tasks/types
// Returns the list of task types that can be triggered manually.
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	types := []TaskTypeInfo{
		{
			Type:        "cleanup_audit_events",
			Description: "Delete audit events older than the retention period",
			Queue:       tasks.CleanupAuditEventsTask{}.Config().Name,
		},
		{
			Type:        "dose_reminder",
			Description: "Send a reminder for one of your medicines now",
			Queue:       tasks.DoseReminderTask{}.Config().Name,
		},
	}

	c.JSON(http.StatusOK, gin.H{
		"task_types": types,
	})
}

// GetTaskStatus handles GET /api/tasks/:id
// Returns the status of a specific task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// RunTaskRequest is the request body for running a task.
type RunTaskRequest struct {
	// MedicineID is required for dose_reminder
	MedicineID uint `json:"medicine_id,omitempty"`
	// RetentionDays overrides the configured retention for cleanup_audit_events
	RetentionDays int `json:"retention_days,omitempty" binding:"omitempty,min=1"`
}

// RunTask handles POST /api/tasks/:type/run
// Manually triggers a task of the specified type.
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	var req RunTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
	}

	var task backlite.Task
	switch taskType {
	case "cleanup_audit_events":
		days := tc.retentionDays
		if req.RetentionDays > 0 {
			days = req.RetentionDays
		}
		task = tasks.CleanupAuditEventsTask{RetentionDays: days}

	case "dose_reminder":
		if req.MedicineID == 0 {
			respondBadRequest(c, "medicine_id is required for dose_reminder task")
			return
		}
		user := currentAccount(c)
		list, err := tc.reader.Medicines(c.Request.Context(), user.ID)
		if err != nil {
			respondDomainError(c, err, "run task")
			return
		}
		found := false
		for _, m := range list {
			if m.ID == req.MedicineID {
				task = tasks.DoseReminderTask{
					UserID:     m.UserID,
					MedicineID: m.ID,
					Name:       m.Name,
					Dosage:     m.Dosage,
					Slot:       time.Now().Format("15:04"),
				}
				found = true
				break
			}
		}
		if !found {
			respondNotFound(c, "medicine")
			return
		}

	default:
		respondBadRequest(c, fmt.Sprintf("unknown task type: %s", taskType))
		return
	}

	ids, err := tc.queue.Enqueue(task)
	if err != nil {
		respondInternalError(c, err, "enqueue task")
		return
	}

	respondAccepted(c, "task enqueued", gin.H{"task_id": ids[0], "type": taskType})
}

// Reminders handles GET /api/reminders
// Lists the upcoming dose reminders of the logged-in account.
func (tc *TasksController) Reminders(c *gin.Context) {
	if tc.reminders == nil {
		c.JSON(http.StatusOK, []any{})
		return
	}
	c.JSON(http.StatusOK, tc.reminders.Upcoming())
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
