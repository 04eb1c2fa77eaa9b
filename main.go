package main

import "github.com/agentic-research/dinoprep/cmd"

func main() {
	cmd.Execute()
}
