package main

import "github.com/OpenTraceLab/edaview/cmd/edav/cmd"

func main() {
	cmd.Execute()
}
