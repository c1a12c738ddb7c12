package main

import "fairwork.com/fairwork/cmd"

func main() {
	cmd.Execute()
}
