// Package main is the entry point for the twintray binary.
package main

import (
	"log"
	"os"

	"github.com/twintray/twintray/internal/cli"
)

func main() {
	log.SetPrefix("[twintray] ")
	log.SetFlags(log.Ldate | log.Ltime)

	if err := cli.Execute(); err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}
}
