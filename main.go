package main

import "github.com/fittcha/bodii/cmd/bodii"

func main() {
	bodii.Execute()
}
