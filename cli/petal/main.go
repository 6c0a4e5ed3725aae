package main

import (
	"os"

	petalcmder "github.com/petalhealth/petal/cmd/petal"
)

func main() {
	cmd := petalcmder.NewPetalCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
