package main

import "github.com/novabook/bookify/cmd"

func main() {
	cmd.Start()
}
