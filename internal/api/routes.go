package api

import (
	"net/http"

	"github.com/JaimeStill/lectern/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	routes.Register(
		mux,
		domain.Contexts.Handler().Routes(),
		domain.Chat.Handler().Routes(),
	)
}
