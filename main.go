package main

import "github.com/kamal-hamza/sri-cli/cmd"

func main() {
	cmd.Execute()
}
