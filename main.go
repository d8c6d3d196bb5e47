package main

import (
	"context"
	"os"

	"github.com/milkvcs/milk/cmd"
)

func main() {
	os.Exit(cmd.Run(context.Background(), os.Args[1:]))
}
