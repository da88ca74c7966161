// Command visitcheck reports visit.Match, visit.MustMatch and visit.Do
// case lists that miss variants of their sum type.
//
//	go run github.com/funvibe/visitgen/cmd/visitcheck ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/funvibe/visitgen/internal/check"
)

func main() {
	singlechecker.Main(check.Analyzer)
}
