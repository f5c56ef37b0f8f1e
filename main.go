// main.go
//
// Entry point; the CLI lives in cmd/root.go.

package main

import (
	"github.com/hospital-sim/hospital-sim/cmd"
)

func main() {
	cmd.Execute()
}
