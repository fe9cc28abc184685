package cmd

import (
	"crypto/ed25519"
	"encoding/base64"

	"github.com/fox-one/mixin-sdk-go"
	"github.com/pandodao/blst"
	"github.com/spf13/cobra"
)

// keysCmd generates a key pair: blst for feed signers, ed25519 for the
// custody wallet.
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "generate a key pair",
	Run: func(cmd *cobra.Command, args []string) {
		cipher, _ := cmd.Flags().GetString("cipher")

		switch cipher {
		case "blst":
			private := blst.GenerateKey()
			cmd.Println("blst private key:", private.String())
			cmd.Println("blst public key:", private.PublicKey().String())
		default:
			private := mixin.GenerateEd25519Key()
			public := private.Public().(ed25519.PublicKey)

			cmd.Println("ed25519 private key:", base64.StdEncoding.EncodeToString(private))
			cmd.Println("ed25519 public key:", base64.StdEncoding.EncodeToString(public))
		}
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)

	keysCmd.Flags().String("cipher", "ed25519", "key cipher, ed25519 or blst")
}
