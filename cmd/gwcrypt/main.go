package main

import (
	"fmt"
	"os"

	"alipaygw/internal/config"
	"alipaygw/internal/crypto"
)

const usage = "usage: gwcrypt encrypt|decrypt <text>"

func main() {
	if len(os.Args) != 3 {
		fmt.Println(usage)
		os.Exit(1)
	}
	key, err := config.LoadAESKey() // AES_256_KEY_BASE64
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var out string
	switch os.Args[1] {
	case "encrypt":
		out, err = crypto.EncryptString(key, os.Args[2])
	case "decrypt":
		out, err = crypto.DecryptString(key, os.Args[2])
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(out)
}
