package main

import "github.com/coilworks/fpcwind/cmd/fpcwind/cmd"

func main() {
	cmd.Execute()
}
