package main

import (
	system "os"
)

type fake struct{}

func (fake) Exit(int) {}

func main() {
	system.Exit(0) // want "direct call of os.Exit in main function"

	var os fake
	os.Exit(1)
}
