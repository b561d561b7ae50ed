package main

import "github.com/lepinkainen/marginalia/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
