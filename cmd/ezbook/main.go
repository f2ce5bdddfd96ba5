// Command ezbook reads and updates the class book-ordering spreadsheet
// through the cached repository.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	c := newCLI(googleClients)
	err := c.rootCmd().Execute()
	err = errors.Join(err, c.teardown(context.Background()))
	if err != nil {
		fmt.Fprintln(os.Stderr, "ezbook:", err)
		os.Exit(1)
	}
}
