// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv (optional .env files) and
// github.com/caarlos0/env/v11 (struct parsing through `env` and `envDefault`
// tags). Each configuration type is parsed once and cached; WithPrefix
// namespaces the keys of a struct, which lets several routers share one
// struct type with different settings.
//
//	var cfg handler.Config
//	config.MustLoad(&cfg)                                  // VALIDATION_ERROR_STATUS_CODE, ...
//	config.MustLoad(&adminCfg, config.WithPrefix("ADMIN_")) // ADMIN_VALIDATION_ERROR_STATUS_CODE, ...
//
// Errors can be matched with errors.Is against ErrParsingConfig,
// ErrLoadingEnvFile and ErrNilPointer. Tests that change the environment
// call ResetCache between loads.
package config
