package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const SecretKeyBytesLen = 32

func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}
}

// Print new secret key. With --env-file also store it as SECRET_KEY keeping other variables
func run(out io.Writer, args []string) error {
	fs := pflag.NewFlagSet("gensecret", pflag.ContinueOnError)
	envFile := fs.StringP("env-file", "w", "", "Write SECRET_KEY into this .env file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	secret, err := generate()
	if err != nil {
		return err
	}

	if *envFile != "" {
		if err := writeEnv(*envFile, secret); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintln(out, secret)
	return err
}

func generate() (string, error) {
	b := make([]byte, SecretKeyBytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func writeEnv(path string, secret string) error {
	env, err := godotenv.Read(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		env = map[string]string{}
	case err != nil:
		return fmt.Errorf("can't read %s: %w", path, err)
	}

	env["SECRET_KEY"] = secret
	return godotenv.Write(env, path)
}
