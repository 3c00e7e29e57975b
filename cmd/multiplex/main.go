// Command multiplex runs the gateway as a standalone process.
package main

import "github.com/dispatchgate/multiplex/cmd/multiplex/cmd"

func main() {
	cmd.Execute()
}
