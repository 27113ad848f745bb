package main

import "github.com/landinghub/pagekit/cmd"

func main() {
	cmd.Execute()
}
