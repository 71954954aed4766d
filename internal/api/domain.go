package api

import (
	"github.com/JaimeStill/lectern/internal/chat"
	"github.com/JaimeStill/lectern/internal/contexts"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Contexts contexts.System
	Chat     chat.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	contextsSystem := contexts.New(
		runtime.Catalog,
		runtime.Logger,
	)

	chatSystem := chat.New(
		runtime.Chat,
		runtime.Catalog,
		contextsSystem,
		chat.NewCompleter(),
		runtime.Logger,
	)

	return &Domain{
		Contexts: contextsSystem,
		Chat:     chatSystem,
	}
}
