package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-showcase/pkg/interfaces"
)

const (
	rootModule         = "showcase"
	contentModule      = "showcase.content"
	productsModule     = "showcase.products"
	mediaModule        = "showcase.media"
	technologiesModule = "showcase.technologies"
	usersModule        = "showcase.users"
	resolverModule     = "showcase.resolver"
	widgetsModule      = "showcase.widgets"
	pagesModule        = "showcase.pages"
	httpModule         = "showcase.http"
	authModule         = "showcase.auth"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field when the logger supports it.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	module = strings.TrimSpace(module)
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{"module": module})
}

func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

func ProductsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, productsModule)
}

func MediaLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, mediaModule)
}

func TechnologiesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, technologiesModule)
}

func UsersLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, usersModule)
}

// ResolverLogger returns the logger namespace used by the content resolver.
// Fallback decisions are logged here at debug level.
func ResolverLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, resolverModule)
}

func WidgetsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, widgetsModule)
}

func PagesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pagesModule)
}

func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

func AuthLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, authModule)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var (
	_ interfaces.Logger       = noopLogger{}
	_ interfaces.FieldsLogger = noopLogger{}
)

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
