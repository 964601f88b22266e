package main

import (
	"log"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: loader load <corpus.wkts>")
	}

	switch os.Args[1] {
	case "load":
		RunLoad(os.Args[2:])
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}
