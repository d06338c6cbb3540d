// Command keygen prints fresh RSA key pairs in the environment format the
// auth service reads.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aussiebroadwan/passgate/pkg/cryptox"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "keygen: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var bits int
	var kind string
	var asPEM bool

	flagSet := pflag.NewFlagSet("keygen", pflag.ContinueOnError)
	flagSet.IntVarP(&bits, "bits", "b", 2048, "RSA modulus size")
	flagSet.StringVarP(&kind, "kind", "k", "all", "which pair to generate: encryption, signing or all")
	flagSet.BoolVar(&asPEM, "pem", false, "print PEM blocks (PKCS8 private, PKIX public) instead of env lines")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: keygen [--bits N] [--kind encryption|signing|all] [--pem]\n\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}
	if bits < cryptox.MinRSABits {
		return fmt.Errorf("--bits must be at least %d", cryptox.MinRSABits)
	}

	var prefixes []string
	switch kind {
	case "encryption":
		prefixes = []string{"AUTH_ENCRYPTION"}
	case "signing":
		prefixes = []string{"AUTH_SIGNING"}
	case "all":
		prefixes = []string{"AUTH_ENCRYPTION", "AUTH_SIGNING"}
	default:
		return fmt.Errorf("unknown --kind %q", kind)
	}

	for _, prefix := range prefixes {
		if asPEM {
			priv, pub, err := cryptox.GenerateRSAKeyPairPEM(bits)
			if err != nil {
				return fmt.Errorf("generate %s pair: %w", prefix, err)
			}
			fmt.Fprintf(out, "# %s\n%s%s", prefix, priv, pub)
			continue
		}

		priv, pub, err := cryptox.GenerateRSAKeyPairBase64(bits)
		if err != nil {
			return fmt.Errorf("generate %s pair: %w", prefix, err)
		}
		fmt.Fprintf(out, "%s_PRIVATE_KEY=%s\n", prefix, priv)
		fmt.Fprintf(out, "%s_PUBLIC_KEY=%s\n", prefix, pub)
	}
	return nil
}
