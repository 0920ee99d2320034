package main

import "github.com/mkralik/photo-insight/cmd"

func main() {
	cmd.Execute()
}
