package main

import "github.com/Togather-Foundation/refunds/cmd/refunds/cmd"

func main() {
	cmd.Execute()
}
