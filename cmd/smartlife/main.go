package main

import "github.com/kwhite/smartlife/cmd/smartlife/cmd"

func main() {
	cmd.Execute()
}
