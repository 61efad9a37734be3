// Package http is the loopback bridge between the local UI and the session.
// It exposes JSON endpoints over the session and façade, and streams the live
// medicine list as server-sent events.
package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	registerValidators()

	router := gin.New()
	router.Use(requestLogger(logrus.StandardLogger()))
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.TaskQueue != nil, cfg.Version)
	account := NewAccountController(cfg.Session)
	medicines := NewMedicinesController(cfg.Session, cfg.Medicines)
	profile := NewProfileController(cfg.Session)
	catalogController := NewCatalogController(cfg.Medicines, cfg.Now)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	// Account endpoints
	api.POST("/register", account.Register)
	api.POST("/login", account.Login)
	api.POST("/logout", account.Logout)
	api.GET("/session", account.Current)

	// Static content
	api.GET("/emergency", catalogController.Emergency)
	api.GET("/emergency/:number", catalogController.Dial)
	api.GET("/news", catalogController.News)

	authed := api.Group("", RequireLogin(cfg.Session))

	authed.GET("/home", catalogController.Home)

	// Medicine endpoints
	authed.GET("/medicines", medicines.List)
	authed.GET("/medicines/stream", medicines.Stream)
	authed.GET("/medicines/:id", medicines.Get)
	authed.POST("/medicines", medicines.Create)
	authed.PUT("/medicines/:id", medicines.Update)
	authed.DELETE("/medicines/:id", medicines.Delete)

	// Profile endpoints
	authed.GET("/profile", profile.Profile)
	authed.PUT("/profile/username", profile.UpdateUsername)
	authed.GET("/preferences", profile.Preferences)
	authed.PUT("/preferences", profile.SavePreferences)

	// Audit endpoints
	if cfg.Auditor != nil {
		auditController := NewAuditController(cfg.Auditor, cfg.Session)
		authed.GET("/audit", auditController.GetAuditEvents)
		authed.GET("/audit/session", auditController.GetSessionEvents)
	}

	// Task management endpoints
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue, cfg.Medicines, cfg.Reminders, cfg.AuditRetentionDays)
		authed.GET("/tasks/types", tasksController.ListTaskTypes)
		authed.GET("/tasks/:id", tasksController.GetTaskStatus)
		authed.POST("/tasks/:type/run", tasksController.RunTask)
		authed.GET("/reminders", tasksController.Reminders)
	}

	return router
}

// requestLogger logs one line per request through logrus.
func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
		if c.Writer.Status() >= 500 {
			entry.Warn("Request failed")
			return
		}
		entry.Debug("Request handled")
	}
}
