// Package fwk holds the pipeline framework: modules with a boot/run/shutdown
// lifecycle, the application driving them and the registry of data drivers.
package fwk

import (
	"github.com/smesh-lab/smesh/config"
	"github.com/smesh-lab/smesh/table"
	"golang.org/x/net/context"
)

// Module is a step of a pipeline.
type Module interface {
	Name() string
	Boot(ctx context.Context) error
	Run(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Driver is responsible for loading the sensor tables of a deployment.
type Driver interface {
	Name() string
	Load(ctx context.Context, cfg *config.Config) (*table.Set, error)
}
