// Package option implements the editor's hierarchical option store.
//
// Options are named, dynamically typed values held in scopes. Scopes form a
// tree: the global scope at the root, buffer scopes beneath it and window
// scopes beneath their buffer. Reading an option walks from the local scope
// up through the parents and returns the first value found.
//
//	global := option.NewGlobalManager()      // tabstop = 8
//	buf := option.NewManager(global)
//	win := option.NewManager(buf)
//
//	opt, err := win.Get("tabstop")           // 8, from global
//	buf.Set("tabstop", 4)                    // shadows global for buf and win
//
// # Read-only and mutable lookup
//
// Get fails with ErrOptionNotFound when no scope declares the name. Lookup
// never fails: on a miss everywhere it declares a default-valued option at
// the root scope. Set uses Lookup for undeclared names, so setting a brand
// new name from any scope declares it globally.
//
// # Option files
//
// LoadFile reads flat name/value pairs from TOML or YAML:
//
//	shell = "/bin/bash"
//	autoreload = "ask"
//	tabstop = 4
package option
