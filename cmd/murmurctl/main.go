package main

import (
	"github.com/fennwick/murmur/cmd/murmurctl/arg"
)

func main() {
	arg.Execute()
}
