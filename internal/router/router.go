// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/pv-site-manager/internal/config"
	"github.com/iliyamo/pv-site-manager/internal/handler"
	"github.com/iliyamo/pv-site-manager/internal/middleware"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Logs      *handler.LogHandler
	Materials *handler.MaterialHandler
	Progress  *handler.ProgressHandler
	Documents *handler.DocumentHandler
}

// Options carries what the middleware chain needs. Redis may be nil, in
// which case rate limiting and caching pass through.
type Options struct {
	Verifier  middleware.TokenVerifier
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Log       zerolog.Logger
}

// New builds the echo instance with every route registered.
func New(h Handlers, opt Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(opt.Log)

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(opt.Log))
	e.Use(middleware.Recovery(opt.Log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))
	e.Use(echomw.BodyLimit("25M"))

	RegisterPublic(e, h)
	RegisterProtected(e, h, opt)
	return e
}

// RegisterPublic mounts the routes that need no token.
func RegisterPublic(e *echo.Echo, h Handlers) {
	e.GET("/", h.Health.Root)
	e.GET("/healthz", h.Health.Health)
}

// RegisterProtected mounts auth and resource routes. Login and register
// are rate limited per client address; everything else sits behind
// JWTAuth and is limited per user.
func RegisterProtected(e *echo.Echo, h Handlers, opt Options) {
	limit := middleware.NewTokenBucket(opt.RateLimit, opt.Redis)
	cache := middleware.NewRedisCache(opt.Cache, opt.Redis)
	invalidate := middleware.InvalidateOnWrite(opt.Cache, opt.Redis)
	auth := middleware.JWTAuth(opt.Verifier)

	a := e.Group("/auth")
	a.POST("/register", h.Auth.Register, limit)
	a.POST("/login", h.Auth.Login, limit)
	a.GET("/me", h.Auth.Me, auth, limit)

	logs := e.Group("/logs", auth, limit)
	logs.POST("", h.Logs.Create)
	logs.GET("", h.Logs.List)
	logs.GET("/:id", h.Logs.Get)

	materials := e.Group("/materials", auth, limit, invalidate, cache)
	materials.POST("", h.Materials.Create)
	materials.POST("/ocr", h.Materials.CreateFromOCR)
	materials.GET("", h.Materials.List)
	materials.GET("/:id", h.Materials.Get)
	materials.PUT("/:id", h.Materials.Update)

	progress := e.Group("/progress", auth, limit, invalidate, cache)
	progress.POST("", h.Progress.Create)
	progress.GET("", h.Progress.List)
	progress.PUT("/:id", h.Progress.Update)

	docs := e.Group("/documents", auth, limit)
	docs.POST("", h.Documents.Upload)
	docs.GET("", h.Documents.List)
	docs.GET("/:id", h.Documents.Get)
	docs.DELETE("/:id", h.Documents.Delete)
}
