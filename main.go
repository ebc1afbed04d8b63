package main

import (
	"Bt1QAuth/cmd"
)

func main() {
	cmd.Execute()
}
