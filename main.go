package main

import "github.com/ValentinKolb/roster/cmd"

func main() {
	cmd.Execute()
}
