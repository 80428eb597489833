package main

import "dailybrief/cmd/handlers"

func main() {
	handlers.Execute()
}
