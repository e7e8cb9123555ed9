package main

import "github.com/Saratii/texpack/cmd"

func main() {
	cmd.Execute()
}
