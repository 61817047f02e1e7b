package main

import "github.com/viant/mcpcore/cmd/mcpcore/cmd"

func main() {
	cmd.Execute()
}
