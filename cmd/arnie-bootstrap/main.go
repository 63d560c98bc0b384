// Command arnie-bootstrap prepares a bare machine for ArniePye: it downloads
// the interpreter and extension installers, runs them, then runs the
// package server's bootstrap script under each interpreter.
package main

import "os"

func main() {
	os.Exit(Execute())
}
