package main

import "github.com/theirongolddev/archifinance/cmd"

func main() {
	cmd.Execute()
}
