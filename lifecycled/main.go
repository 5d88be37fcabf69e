// Binary lifecycled supervises application lifecycle on a set-top/TV
// device: it spawns, transitions, suspends, hibernates, wakes, and
// terminates sandboxed applications by driving their state machines and
// coordinating the runtime, display, and storage collaborators.
package main

import (
	"github.com/rdkcentral/lifecyclemanager/lifecycled/cli"
)

func main() {
	cli.Main()
}
