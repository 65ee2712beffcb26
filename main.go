package main

import "github.com/nsai-uio/IMF-AITool/cmd"

func main() {
	cmd.Execute()
}
