package main

import "github.com/vibast-solutions/ms-go-sessionauth/cmd"

func main() {
	cmd.Execute()
}
