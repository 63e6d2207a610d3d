package middleware

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/aretw0/draftwizard/pkg/ports"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Middleware allows wrapping a DraftStore to add behavior.
type Middleware func(ports.DraftStore) ports.DraftStore

// Chain wraps store with mws. The first middleware is the outermost.
func Chain(store ports.DraftStore, mws ...Middleware) ports.DraftStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
