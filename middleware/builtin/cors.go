package builtin

import "github.com/yourusername/ember/middleware"

// CORSConfig names the handful of headers bolt/core/headers.go
// pre-compiles constants for (corsAllowAll etc.); Ember exposes them as a
// small config struct instead of fixed byte constants, since a middleware
// registration (unlike bolt's Context method) is the right layer to make
// these configurable per deployment.
type CORSConfig struct {
	AllowOrigin  string
	AllowMethods string
	AllowHeaders string
}

// DefaultCORSConfig mirrors bolt/core/headers.go's corsAllowAll ("*")
// default.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigin:  "*",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowHeaders: "Content-Type, Authorization",
	}
}

// CORS returns a PRE_ROUTE registration that sets the standard
// Access-Control-* headers and short-circuits OPTIONS preflight requests.
func CORS(priority uint32, cfg CORSConfig) middleware.Registration {
	return middleware.Registration{
		Name:     "cors",
		Priority: priority,
		Flags:    middleware.FlagPreRoute,
		Func: func(ctx *middleware.Context) middleware.Result {
			ctx.SetHeader("Access-Control-Allow-Origin", cfg.AllowOrigin)
			ctx.SetHeader("Access-Control-Allow-Methods", cfg.AllowMethods)
			ctx.SetHeader("Access-Control-Allow-Headers", cfg.AllowHeaders)
			if ctx.Request != nil && ctx.Request.Method() == "OPTIONS" {
				ctx.SetStatus(204)
				return middleware.SkipRoute
			}
			return middleware.Continue
		},
	}
}
