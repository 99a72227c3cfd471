// Command compatinfo manages the compatinfo reference database and reports
// test runs against it.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	err := newApp().command().Run(context.Background(), os.Args)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
