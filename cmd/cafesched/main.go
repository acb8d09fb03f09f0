package main

import "github.com/example/cafe-reservations/cmd"

func main() {
	cmd.Execute()
}
