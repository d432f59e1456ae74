package main

import "locator-catalog/internal/bootstrap"

func main() {
	bootstrap.NewApp().Run()
}
