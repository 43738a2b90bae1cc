// The main package for the disclosure-crawler executable.
package main

import (
	"github.com/fsbdata/disclosure-crawler/cmd"
)

func main() {
	cmd.Execute()
}
