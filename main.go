package main

import "github.com/KaramelBytes/dashcsv/cmd"

func main() {
	cmd.Execute()
}
