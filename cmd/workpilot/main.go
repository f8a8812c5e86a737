// Command workpilot runs the weekly report bot and its admin API.
package main

import "os"

func main() {
	os.Exit(execute())
}
