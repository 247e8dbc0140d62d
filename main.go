package main

import (
	"os"

	"github.com/alesfias96/student-performance-ai/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
