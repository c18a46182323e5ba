// Command marcos runs the phrase and haiku bot and its maintenance tools.
package main

func main() {
	Execute()
}
