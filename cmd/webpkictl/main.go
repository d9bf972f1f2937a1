// Command webpkictl inspects certificates and drives the webpki engine's
// chain and name validation from the command line.
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:]))
}
