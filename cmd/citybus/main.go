// Package main implements the citybus CLI.
package main

func main() {
	Execute()
}
