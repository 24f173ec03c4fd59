// Command akitasync runs a small console machine on top of the suspend
// coordinator. The engine sleeps whenever the virtual CPU waits for input.
package main

import "github.com/sarchlab/akitasync/cmd/akitasync/cmd"

func main() {
	cmd.Execute()
}
