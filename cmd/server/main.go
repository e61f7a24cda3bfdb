package main

import "github.com/sunum-ai/copilot-backend/internal/bootstrap"

func main() {
	bootstrap.Run()
}
