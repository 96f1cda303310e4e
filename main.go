package main

import "github.com/pipcheck/pipcheck/cmd"

func main() {
	cmd.Execute()
}
