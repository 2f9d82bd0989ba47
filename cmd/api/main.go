package main

import (
	"context"
	"fmt"
	"os"

	apicmder "github.com/pageza/worldchef/backend/internal/cmd/api"
)

func main() {
	if err := apicmder.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
