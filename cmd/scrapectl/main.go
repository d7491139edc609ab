// Command scrapectl inspects and maintains the scrape store.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	root, a := newRootCommand()
	if err := execute(context.Background(), root, a); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
