package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // /debug/pprof

	"github.com/jmoiron/sqlx"

	dig_container "github.com/trezcool/koinonia/apps/api/di/dig"
	echoapi "github.com/trezcool/koinonia/apps/api/echo"
	"github.com/trezcool/koinonia/core"
)

func main() {
	c := dig_container.New()
	must(c.Invoke(run))
}

func run(conf *core.Config, logger core.Logger, dbLogger dig_container.DBLoggerParam, db *sqlx.DB, server *echoapi.Server) error {
	logger.Info(fmt.Sprintf("%s API starting: build %q, env %s", conf.AppName, conf.Build, conf.Env))
	defer func() {
		if err := db.Close(); err != nil {
			dbLogger.Logger.Error("closing database", err)
		}
		logger.Info(conf.AppName + " API stopped")
	}()

	serveDebug(conf, logger)
	go server.Start()

	select {
	case err := <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)
		return err
	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("received %v, shutting down", sig))
		stop(conf, logger, server)
		return nil
	}
}

// serveDebug exposes /debug/vars and /debug/pprof on the debug host.
func serveDebug(conf *core.Config, logger core.Logger) {
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("dbEngine").Set(conf.Database.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Warn(fmt.Sprintf("debug server stopped: %v", err), err)
		}
	}()
}

// stop drains in-flight requests until the shutdown timeout, then closes the listener.
func stop(conf *core.Config, logger core.Logger, server *echoapi.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error(fmt.Sprintf("graceful shutdown failed: %v", err), err)
		if err = server.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing server: %v", err), err)
		}
	}
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
