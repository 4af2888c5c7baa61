//go:build (darwin && cgo) || (dragonfly && cgo) || (freebsd && cgo) || (linux && cgo) || (netbsd && cgo) || (openbsd && cgo)

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/contentauth/c2pa-go/pkg/c2pa"
)

func Start() error {
	fs := flag.NewFlagSet("c2pa-go-demo", flag.ExitOnError)
	manifest := fs.String("manifest", "", "manifest file for signing")
	cert := fs.String("cert", "", "certificate chain file to use")
	key := fs.String("key", "", "private key file to use")
	input := fs.String("input", "", "input file for signing")
	output := fs.String("output", "", "output file for signing")
	alg := fs.String("alg", "", "algorithm to use to sign (es256, es384, es512, ps256, ps384, ps512, ed25519)")
	settings := fs.String("settings", "", "optional settings file (json, jsonc, or toml)")
	pass := os.Args[1:]
	err := fs.Parse(pass)
	if err != nil {
		return err
	}

	var ctx *c2pa.Context
	if *settings != "" {
		s, err := c2pa.NewSettings()
		if err != nil {
			return err
		}
		if err := s.UpdateFile(*settings); err != nil {
			s.Close()
			return err
		}
		cb, err := c2pa.NewContextBuilder()
		if err != nil {
			s.Close()
			return err
		}
		if err := cb.WithSettings(s); err != nil {
			s.Close()
			return err
		}
		s.Close()
		ctx, err = cb.CreateContext()
		if err != nil {
			return err
		}
		defer ctx.Close()
	}

	if *manifest != "" || *output != "" {
		if *manifest == "" {
			return fmt.Errorf("missing --manifest")
		}
		if *output == "" {
			return fmt.Errorf("missing --output")
		}
		if *input == "" {
			return fmt.Errorf("missing --input")
		}
		if *cert == "" {
			return fmt.Errorf("missing --cert")
		}
		if *key == "" {
			return fmt.Errorf("missing --key")
		}
		if *alg == "" {
			return fmt.Errorf("missing --alg")
		}
		certBytes, err := os.ReadFile(*cert)
		if err != nil {
			return err
		}
		keyBytes, err := os.ReadFile(*key)
		if err != nil {
			return err
		}
		manifestBytes, err := os.ReadFile(*manifest)
		if err != nil {
			return err
		}
		privKey, err := c2pa.ParsePrivateKey(keyBytes)
		if err != nil {
			return err
		}
		signer, err := c2pa.NewKeySigner(*alg, certBytes, "http://timestamp.digicert.com", privKey)
		if err != nil {
			return err
		}
		defer signer.Close()
		b, err := c2pa.NewBuilder(ctx, string(manifestBytes))
		if err != nil {
			return err
		}
		defer b.Close()
		_, err = b.SignFile(*input, *output, signer)
		return err
	}

	args := fs.Args()
	if len(args) != 1 {
		fs.Usage()
		fmt.Printf("usage: %s [target-file]\n", os.Args[0])
		return nil
	}
	fname := args[0]
	reader, err := c2pa.NewReaderFromFile(ctx, fname)
	if err != nil {
		return err
	}
	defer reader.Close()

	report, err := reader.JSON()
	if err != nil {
		return err
	}

	fmt.Println(report)
	return nil
}

func main() {
	err := Start()
	if err != nil {
		panic(err)
	}
}
