package app

import (
	"net/http"

	"github.com/kegliz/leqo-compile/internal/server/router"
)

func (a *appServer) routes() []*router.Route {
	return []*router.Route{
		{
			Name:        "root",
			Method:      http.MethodGet,
			Pattern:     "/",
			HandlerFunc: a.RootHandler,
		},
		{
			Name:        "health",
			Method:      http.MethodGet,
			Pattern:     "/health",
			HandlerFunc: a.HealthHandler,
		},
		{
			Name:        "api.compile.submit",
			Method:      http.MethodPost,
			Pattern:     "/api/compile",
			HandlerFunc: a.SubmitCompile,
		},
		{
			Name:        "api.compile.status",
			Method:      http.MethodGet,
			Pattern:     "/api/compile/:id",
			HandlerFunc: a.JobStatus,
		},
		{
			Name:        "api.compile.cancel",
			Method:      http.MethodDelete,
			Pattern:     "/api/compile/:id",
			HandlerFunc: a.CancelCompile,
		},
	}
}
