package main

import "github.com/harry-hov/lspfmt/cmd"

func main() {
	cmd.Execute()
}
