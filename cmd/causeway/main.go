// Command causeway analyzes execution logs offline: it builds the causality
// graph of a log, applies view transformations and prints the result.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/V4T54L/causeway/internal/pkg/exception"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

// printError shows query errors with their caret annotation styled for the
// terminal and everything else as a plain message.
func printError(err error) {
	var ex *exception.Exception
	if errors.As(err, &ex) && ex.IsUserFriendly() {
		fmt.Fprintln(os.Stderr, styles.Error.Render("Error:"), ex.Styled())
		return
	}
	fmt.Fprintln(os.Stderr, styles.Error.Render("Error:"), err)
}
