package main

import "github.com/vietddude/drivingschool/internal/cli"

func main() {
	cli.Execute()
}
