// main.go - admin control tool for Voicero
package main

func main() {
	Execute()
}
