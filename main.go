package main

import (
	"github.com/pet2cattle/aws-dashboard/cmd"
)

func main() {
	cmd.Execute()
}
