package mcpsrv

import (
	"github.com/usestring/schemainfer/internal/config"
	"github.com/usestring/schemainfer/internal/pipeline"
	"github.com/usestring/schemainfer/internal/store"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same infrastructure as builtin tools.
type Deps struct {
	Config   *config.Config
	Store    *store.FileStore
	Pipeline *pipeline.Pipeline
}
