// Package main is the entry point for rscapproval.
//
// rscapproval guides researchers through the documents needed for a research
// expense request, assembles the bundle and tracks it through admin and
// director approval. See the cli package for the commands.
package main

import "rscapproval/internal/cli"

func main() {
	cli.Execute()
}
