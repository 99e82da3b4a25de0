// Package hcl implements the config.Loader interface for HCL files.
//
// Configuration is written as top-level attributes for global options and
// named blocks for feature namespaces; block contents are flattened into the
// dot-namespaced Settings model, so
//
//	debug = true
//	session {
//	  secret  = "s3cr3t"
//	  timeout = 1800
//	}
//
// yields the keys "debug", "session.secret" and "session.timeout".
package hcl
