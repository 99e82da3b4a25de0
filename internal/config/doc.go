// Package config defines the format-agnostic settings model for the
// application, along with the Loader interface for reading configuration
// from various sources and the converters used to coerce raw option values
// into their expected Go types.
//
// Settings is a flat dictionary with dot-namespaced keys ("session.secret",
// "templating.auto_reload"). Concrete loaders, such as for HCL or YAML, are
// provided in separate packages.
package config
