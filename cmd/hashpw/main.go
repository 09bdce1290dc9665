// Command hashpw prints the bcrypt hash of a password, for setting
// CLUB_PASSWORD_HASH.
package main

import (
	"fmt"
	"os"

	"rutanorte/api/internal/auth"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hashpw <password>")
		os.Exit(1)
	}
	hash, err := auth.HashPassword(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
