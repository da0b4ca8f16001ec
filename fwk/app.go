package fwk

import (
	"time"

	"golang.org/x/net/context"
)

type App struct {
	*Base
	ctx     context.Context
	modules []Module
}

func New(name string, modules ...Module) (*App, error) {
	return NewWithContext(context.Background(), name, modules...)
}

// NewWithContext creates an application whose phases derive from ctx.
func NewWithContext(ctx context.Context, name string, modules ...Module) (*App, error) {
	return &App{
		Base:    NewBase(name),
		ctx:     ctx,
		modules: modules,
	}, nil
}

func (app *App) AddModule(m Module) {
	app.modules = append(app.modules, m)
}

func (app *App) Modules() []Module {
	return app.modules
}

func (app *App) Run() error {
	var err error

	err = app.sysBoot()
	if err != nil {
		return err
	}

	err = app.sysRun()
	if err != nil {
		return err
	}

	err = app.sysShutdown()
	if err != nil {
		return err
	}

	app.Debugf("app [%s] done (time=%v)", Color(app.Name()), app.Elapsed())
	return err
}

func (app *App) phase(name string, f func(m Module, ctx context.Context) error) error {
	var err error
	ctx, cancel := context.WithCancel(app.ctx)
	defer cancel()

	for _, m := range app.modules {
		start := time.Now()
		err = f(m, ctx)
		delta := time.Since(start)
		if err != nil {
			app.Errorf("%s [%s]... [err=%v] (time=%v)", name, m.Name(), err, delta)
			return err
		}
		app.Debugf("%s [%s]... [ok] (time=%v)", name, m.Name(), delta)
	}

	return err
}

func (app *App) sysBoot() error {
	return app.phase("boot", func(m Module, ctx context.Context) error {
		return m.Boot(ctx)
	})
}

func (app *App) sysRun() error {
	return app.phase("run", func(m Module, ctx context.Context) error {
		return m.Run(ctx)
	})
}

func (app *App) sysShutdown() error {
	return app.phase("shutdown", func(m Module, ctx context.Context) error {
		return m.Shutdown(ctx)
	})
}
