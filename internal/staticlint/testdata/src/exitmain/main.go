package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("start")
	os.Exit(1) // want "direct call of os.Exit in main function"

	defer func() {
		os.Exit(2) // want "direct call of os.Exit in main function"
	}()

	if len(os.Args) > 1 {
		os.Exit(3) // want "direct call of os.Exit in main function"
	}

	exit(4)
}

func exit(code int) {
	os.Exit(code)
}

type app struct{}

func (app) main() {
	os.Exit(0)
}
