// Command alarm-clock runs the puzzle alarm clock server and its CLI client.
package main

import "github.com/oshokin/alarm-clock/cmd/alarm-clock/cmd"

func main() {
	cmd.Execute()
}
