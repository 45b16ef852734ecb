//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/brettelliot/azul/internal/app"
)

// InitializeSymbols builds the symbols command dependencies via Wire.
// Caller must call the cleanup when done.
func InitializeSymbols(cfg *app.Config) (*app.SymbolsApp, func(), error) {
	wire.Build(
		app.ProvideLogger,
		app.CreateSymbolSource,
		wire.Struct(new(app.SymbolsApp), "*"),
	)
	return nil, nil, nil
}

// InitializeRun builds the download and update dependencies via Wire.
// Caller must call the cleanup when done; it closes the sink and the data source.
func InitializeRun(cfg *app.Config) (*app.RunApp, func(), error) {
	wire.Build(
		app.ProvideLogger,
		app.CreateSymbolSource,
		app.ProvideCalendar,
		app.ProvideDataSource,
		app.ProvideSink,
		app.ProvideBuilder,
		app.ProvideReconciler,
		app.ProvideProcessor,
		app.ProvideRunner,
		wire.Struct(new(app.RunApp), "*"),
	)
	return nil, nil, nil
}
