package main

import (
	"log"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.New(os.Stderr, "", log.LstdFlags).Printf("pipeline error: %v", err)
		os.Exit(1)
	}
}
