// Package manifest reads declaration manifests.
//
// A manifest lists declarations with a short payload. It is either TOML
//
//	[[declaration]]
//	id = 'method(class("App\\User"),"save")'
//	summary = "persists the user"
//
//	[[declaration]]
//	kind = "property"
//	class = 'App\User'
//	name = "email"
//
// or YAML with the same fields under a top-level "declaration" list. An
// entry names its declaration either by canonical encoding (id) or by kind
// and fields. Building a File into a map reports problems to a
// diag.Reporter and skips the entries it cannot use.
package manifest
