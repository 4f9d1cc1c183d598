// Command httpvalidate-demo serves a small API whose routes validate their
// input with the handler package.
//
// Configuration comes from the environment (and an optional .env file):
//
//	APP_ENV                       development | staging | production
//	LOG_LEVEL                     debug | info | warn | error
//	LOG_FILE                      rotate logs into this file instead of stdout
//	HTTP_ADDR                     listen address, default :8080
//	VALIDATION_ERROR_STATUS_CODE  status of validation failures, default 400
//	VALIDATION_ERROR_RAISE        pass failures to the error handler instead
package main

import (
	"context"
	"os"

	"github.com/dmitrymomot/httpvalidate/handler"
	"github.com/dmitrymomot/httpvalidate/pkg/clientip"
	"github.com/dmitrymomot/httpvalidate/pkg/config"
	"github.com/dmitrymomot/httpvalidate/pkg/httpserver"
	"github.com/dmitrymomot/httpvalidate/pkg/logger"
	"github.com/dmitrymomot/httpvalidate/pkg/requestid"
)

const serviceName = "httpvalidate-demo"

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`
	LogFile  string `env:"LOG_FILE"`
}

func main() {
	var (
		app        appConfig
		server     httpserver.Config
		validation handler.Config
	)
	config.MustLoad(&app)
	config.MustLoad(&server)
	config.MustLoad(&validation)

	var logOpts []logger.Option
	if app.LogFile != "" {
		logOpts = append(logOpts, logger.WithFile(app.LogFile, 100, 3, 28))
	}
	logOpts = append(logOpts,
		logger.WithEnvironment(app.Env, serviceName),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
	)
	if app.LogLevel != "" {
		logOpts = append(logOpts, logger.WithLevelName(app.LogLevel))
	}
	log := logger.New(logOpts...)
	logger.SetAsDefault(log)

	srv := httpserver.NewFromConfig(server, httpserver.WithLogger(log))
	if err := srv.Run(context.Background(), newRouter(log, validation, newItemStore())); err != nil {
		log.Error("server stopped", logger.Error(err))
		os.Exit(1)
	}
}
