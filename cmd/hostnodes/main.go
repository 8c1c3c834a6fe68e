package main

import "github.com/mordilloSan/hostnodes/webserver/cmd"

func main() {
	cmd.StartHostNodes()
}
