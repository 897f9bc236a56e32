// Package declid identifies declarations of an introspected program.
//
// An identifier is an immutable value naming a class (named or anonymous),
// a function, a method, a parameter, a constant, a class constant or a
// property. The set of variants is closed: Id is a sealed interface and
// every variant is a small comparable struct built by a validating
// constructor.
//
// # Encoding
//
// Every identifier has a canonical encoding used as a map key:
//
//	class("App\\User")
//	anonymous-class("src/factory.php",12,9)
//	method(class("App\\User"),"save")
//	parameter(method(class("App\\User"),"save"),"force")
//
// Names are Go-quoted and composite identifiers embed the full encoding of
// their owner, so encodings never collide between different identifiers
// and two identifiers are Equal exactly when their encodings match. Parse
// turns an encoding back into an identifier.
//
// Describe renders the short, human-oriented form used in diagnostics
// (App\User::save($force)); it is not collision-free.
//
// # Resolution
//
// Resolve asks a Reflector for a live handle of the declaration. An
// anonymous class whose runtime name was not captured cannot be resolved
// and yields an *UnresolvableError; errors reported by the Reflector itself
// are returned unchanged.
package declid
