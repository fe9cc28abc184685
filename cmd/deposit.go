package cmd

import (
	"lagoon/pkg/id"
	"lagoon/service/wallet"

	"github.com/fox-one/pkg/qrcode"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// depositCmd prints a payment link into the custody wallet. The deposit
// worker credits the custody account once the snapshot lands.
var depositCmd = &cobra.Command{
	Use:     "deposit",
	Aliases: []string{"dp"},
	Short:   "build a payment link funding a custody account",
	Run: func(cmd *cobra.Command, args []string) {
		assetID, err := cmd.Flags().GetString("asset")
		if err != nil || assetID == "" {
			panic("invalid asset")
		}

		amount, err := cmd.Flags().GetString("amount")
		if err != nil {
			panic(err)
		}

		amountNum, err := decimal.NewFromString(amount)
		if err != nil || !amountNum.IsPositive() {
			panic("invalid amount")
		}

		url, err := wallet.PaySchemaURL(amountNum, assetID, cfg.Dapp.ClientID, id.GenTraceID(), "deposit")
		if err != nil {
			panic(err)
		}

		cmd.Println(url)
		qrcode.Fprint(cmd.OutOrStdout(), url)
	},
}

func init() {
	rootCmd.AddCommand(depositCmd)

	depositCmd.Flags().String("asset", "", "asset id")
	depositCmd.Flags().String("amount", "", "amount to deposit")
}
