// Package config provides the context-dispatched configuration store.
//
// Overview:
//   - Responsibility: Hold dotted-key configuration and resolve the store
//     active for the current execution context
//   - Key Types: Store for the mutable mapping, View for prefix groups,
//     Dispatcher for process/context resolution
//   - Concurrency Model: Stores are safe for concurrent use; a store bound to
//     a context shadows the process stack so concurrent applications never
//     observe each other's values
//   - Error Semantics: Missing keys surface as coded NotFound errors after the
//     exact-key and prefix-group fallbacks, never as silent defaults
//   - Performance Notes: Views and snapshots are fresh copies, reads take a
//     shared lock
//
// Usage:
//
//	conf, _ := config.Current(ctx)
//	conf.Set("debug", true)
//	sa, err := conf.View("sa_auth")
//
// The package-level Default dispatcher is seeded with Defaults() at load time
// so configuration read during program initialization has something to look
// at; applications push their resolved store on top during environment setup.
package config
