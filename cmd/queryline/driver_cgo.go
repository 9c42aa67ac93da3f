//go:build sqlite_cgo

package main

// The cgo sqlite driver registers as "sqlite3"; select it with
// --backend sqlite and an adapter built via sqlite.NewWithDriver.
import _ "github.com/mattn/go-sqlite3"
