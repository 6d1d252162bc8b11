package main

import "semaphore/dashboard/cmd/dashboard/cmd"

func main() {
	cmd.Execute()
}
