// Package controllers holds the HTTP controllers for the EzraVerify API
// and the public verification pages.
package controllers

import (
	"net/http"

	"github.com/doebialale/EZRAVERIFY/internal/runtime"
	logpkg "github.com/doebialale/EZRAVERIFY/pkg/log"
)

// ControllerRegistry manages all HTTP controllers.
//
// It provides a centralized way to register all controller routes.
type ControllerRegistry struct {
	general *GeneralController
	codes   *CodesController
	verify  *VerifyController
}

// NewControllerRegistry creates a new controller registry.
func NewControllerRegistry(rt *runtime.Runtime, logger logpkg.Logger) *ControllerRegistry {
	return &ControllerRegistry{
		general: NewGeneralController(rt),
		codes:   NewCodesController(rt, logger),
		verify:  NewVerifyController(rt, logger),
	}
}

// RegisterAllRoutes registers all controller routes with the given mux.
//
// This sets up the health and metrics endpoints, the code management API,
// and the catch-all public verification pages.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.codes.RegisterRoutes(mux)
	r.verify.RegisterRoutes(mux)
}
