package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/nestjam/linkshort/internal/client"
)

const (
	createSubcommand = "create"
	getSubcommand    = "get"
)

var errUsage = errors.New("usage: client create|get [-a address] args...")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		exit(err)
	}
}

func exit(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	flagSet := flag.NewFlagSet(args[0], flag.ContinueOnError)
	serverAddr := flagSet.String("a", client.DefaultServerAddress, "address of shortener server")

	if err := flagSet.Parse(args[1:]); err != nil {
		return err
	}

	c := client.New(client.WithServerAddress(*serverAddr))

	var do func(string) (string, error)
	switch args[0] {
	case createSubcommand:
		do = c.Create
	case getSubcommand:
		do = c.Get
	default:
		return errUsage
	}

	for _, arg := range flagSet.Args() {
		result, err := do(arg)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, result)
	}

	return nil
}
