package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	cli "github.com/EdibleTuber/void-mcp-server/cmd/voidmcp"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	if err := cli.SetupRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
