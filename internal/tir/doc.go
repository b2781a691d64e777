// Package tir models tensor-level intermediate representation: modules of
// primitive functions over fixed-shape buffers, built with loop nests and
// named blocks whose iteration axes are bound to enclosing loop variables.
//
// Modules are assembled with a closure-based builder (see IRModule.DefineFunc),
// checked with Verify, rendered with Print and evaluated by Run. Nothing in
// this package lowers or compiles a module.
package tir
