package main

import "github.com/aalvaropc/numlab/internal/cli"

func main() {
	cli.Execute()
}
