package main

import "github.com/KaramelBytes/nbastat-cli/cmd"

func main() {
	cmd.Execute()
}
