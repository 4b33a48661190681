// Command finctl prints fintrack analytics in the terminal, reading the
// configured backend directly.
package main

func main() {
	Execute()
}
