// Command tabprep imputes, cleans, transforms and views tabular files.
//
//	tabprep impute FILE
//	tabprep clean FILE [-o OUT]
//	tabprep transform [FILE] [--kind K] [--columns LIST] [-o OUT]
//	tabprep view FILE [--addr :8090]
//	tabprep version
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
