package main

import "github.com/kamal-hamza/cloak-cli/cmd"

func main() {
	cmd.Execute()
}
