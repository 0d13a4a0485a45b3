// Package main is the entry point for the matchmetrics CLI, which ingests
// tagged football match event logs and computes team and player views.
package main

import "github.com/pable/go-match-metrics/cmd"

func main() {
	cmd.Execute()
}
