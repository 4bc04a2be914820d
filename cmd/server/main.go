package main

import "github.com/eventura/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
