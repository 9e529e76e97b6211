package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"

	"arbscan/internal/api"
	"arbscan/internal/api/middleware"
	"arbscan/internal/service"
)

func (app *App) initHTTP(scanService service.ScanServiceInterface) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(app.logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/rates", api.HandleGetRates(scanService))

	r.Get("/opportunities/triangular", api.HandleFindTriangular(scanService))
	r.Get("/opportunities/cross-exchange", api.HandleScanVenues(scanService))
	r.Post("/opportunities/cross-exchange", api.HandleEvaluateCrossExchange(scanService))

	r.Post("/scans", api.HandleRequestScan(scanService))
	r.Get("/scans/latest", api.HandleGetLatestScan(scanService))
	r.Get("/scans/{scan_id}", api.HandleGetScan(scanService))

	r.Get("/providers", api.HandleGetProviders(scanService))
	r.Get("/settings", api.HandleGetSettings(scanService))
	r.Put("/settings", api.HandleUpdateSettings(scanService))

	r.Get("/healthz", api.HandleHealthz())
	r.Get("/readyz", api.HandleReadyz(app.db, app.rdbCache, app.rdbAsynq))

	if app.cfg.Server.ServeSwagger {
		api.MountSwagger(r)
	}

	if app.cfg.Server.ServeAsynqmon {
		mon := asynqmon.New(asynqmon.Options{
			RootPath:     "/asynqmon",
			RedisConnOpt: asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr},
		})
		r.Mount(mon.RootPath(), mon)
	}

	app.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
