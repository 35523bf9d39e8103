package main

import (
	"fmt"

	"github.com/wicstas/llc"
)

// bindBuiltins registers the host functions and types every script run
// by the CLI can rely on.
func bindBuiltins(p *llc.Program) {
	p.BindFunction("print", func(v float32) { fmt.Println(v) })
	p.BindFunction("printi", func(v int) { fmt.Println(v) })
	p.BindFunction("printf", func(v float32) { fmt.Println(v) })
	p.BindFunction("prints", func(s string) { fmt.Println(s) })
	llc.BindIntVector(p, "vectori")
}
