package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "mlcprobe: %v\n", err)
		os.Exit(1)
	}
}
