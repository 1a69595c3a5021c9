package main

import "evcdr/backend/services/billing-service/internal/cli"

func main() {
	cli.Execute()
}
