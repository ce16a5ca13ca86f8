package main

import "os"

// @title        GNAP Authorization Server
// @version      1.0
// @description  Grant negotiation, interaction, and token issuance (GNAP).
// @BasePath     /
func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
