// Command ultimatethumb plans, names, renders and serves image thumbnails.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
