package main

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-jose/go-jose/v4"
	"github.com/spf13/cobra"
)

// keyPair es la salida de keygen: la privada queda del lado del cliente y la
// pública es la que se registra en POST /clients.
type keyPair struct {
	Private jose.JSONWebKey `json:"private"`
	Public  jose.JSONWebKey `json:"public"`
}

func newKeygenCommand() *cobra.Command {
	var keyType string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a client signing key as a JWK pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pair, err := generateKeyPair(keyType)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(pair, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&keyType, "type", "ec", "Key family: rsa|ec|ed25519.")
	return cmd
}

func generateKeyPair(keyType string) (keyPair, error) {
	var (
		priv any
		alg  string
	)

	switch strings.ToLower(strings.TrimSpace(keyType)) {
	case "rsa":
		k, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return keyPair{}, err
		}
		priv, alg = k, string(jose.RS256)
	case "ec", "ecdsa":
		k, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return keyPair{}, err
		}
		priv, alg = k, string(jose.ES256)
	case "ed25519", "okp":
		_, k, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return keyPair{}, err
		}
		priv, alg = k, string(jose.EdDSA)
	default:
		return keyPair{}, fmt.Errorf("unsupported key type %q: expected rsa, ec or ed25519", keyType)
	}

	jwk := jose.JSONWebKey{Key: priv, Algorithm: alg, Use: "sig"}

	// kid = thumbprint RFC 7638 de la pública
	tp, err := jwk.Public().Thumbprint(crypto.SHA256)
	if err != nil {
		return keyPair{}, fmt.Errorf("thumbprint: %w", err)
	}
	jwk.KeyID = base64.RawURLEncoding.EncodeToString(tp)

	return keyPair{Private: jwk, Public: jwk.Public()}, nil
}
