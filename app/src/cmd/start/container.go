package main

import (
	"telemetry-dashboard/app/src/core"
	"telemetry-dashboard/app/src/infra"
	"telemetry-dashboard/app/src/render"
)

type application struct {
	Config    infra.Config
	Logger    *infra.Logger
	Dashboard *core.Dashboard
	Renderer  *render.Renderer
}

func newApplication(cfg infra.Config, logger *infra.Logger, dashboard *core.Dashboard, renderer *render.Renderer) *application {
	return &application{
		Config:    cfg,
		Logger:    logger,
		Dashboard: dashboard,
		Renderer:  renderer,
	}
}
