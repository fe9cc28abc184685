package cmd

import (
	"time"

	"lagoon/core"

	"github.com/spf13/cobra"
)

var addSignerCmd = &cobra.Command{
	Use:     "add-signer",
	Aliases: []string{"as"},
	Short:   "register a price feed signer",
	Long: `flags->
	index: position of the signer in the feed signature mask
	name: display name
	key: base64 blst public key`,
	Run: func(cmd *cobra.Command, args []string) {
		database := provideDatabase()
		defer database.Close()

		index, _ := cmd.Flags().GetUint64("index")
		name, _ := cmd.Flags().GetString("name")
		key, _ := cmd.Flags().GetString("key")
		if key == "" {
			panic("no public key")
		}

		signer := &core.OracleSigner{
			Index:     index,
			Name:      name,
			PublicKey: key,
		}

		if _, err := signer.Signer(); err != nil {
			panic(err)
		}

		if err := provideOracleSignerStore(database).Save(cmd.Context(), signer); err != nil {
			panic(err)
		}

		cmd.Println("signer saved at index", index)
	},
}

var removeSignerCmd = &cobra.Command{
	Use:   "remove-signer",
	Short: "remove a price feed signer",
	Run: func(cmd *cobra.Command, args []string) {
		database := provideDatabase()
		defer database.Close()

		index, _ := cmd.Flags().GetUint64("index")
		if err := provideOracleSignerStore(database).Delete(cmd.Context(), index); err != nil {
			panic(err)
		}

		cmd.Println("signer removed at index", index)
	},
}

var listSignersCmd = &cobra.Command{
	Use:   "list-signers",
	Short: "list registered price feed signers",
	Run: func(cmd *cobra.Command, args []string) {
		database := provideDatabase()
		defer database.Close()

		signers, err := provideOracleSignerStore(database).FindAll(cmd.Context())
		if err != nil {
			panic(err)
		}

		for _, signer := range signers {
			cmd.Printf("%d %s %s\n", signer.Index, signer.Name, signer.PublicKey)
		}
	},
}

var setStaleThresholdCmd = &cobra.Command{
	Use:   "set-stale-threshold",
	Short: "override the max price age accepted by risk reads",
	Run: func(cmd *cobra.Command, args []string) {
		database := provideDatabase()
		defer database.Close()

		seconds, _ := cmd.Flags().GetInt64("seconds")
		if seconds <= 0 {
			panic("invalid seconds")
		}

		oracleService := provideOracleService(providePriceStore(database), providePropertyStore(database))
		if err := oracleService.SetStaleThreshold(cmd.Context(), time.Duration(seconds)*time.Second); err != nil {
			panic(err)
		}

		cmd.Println("stale threshold set to", seconds, "seconds")
	},
}

func init() {
	rootCmd.AddCommand(addSignerCmd)
	rootCmd.AddCommand(removeSignerCmd)
	rootCmd.AddCommand(listSignersCmd)
	rootCmd.AddCommand(setStaleThresholdCmd)

	addSignerCmd.Flags().Uint64("index", 0, "signer index in the signature mask")
	addSignerCmd.Flags().String("name", "", "signer name")
	addSignerCmd.Flags().String("key", "", "base64 blst public key")

	removeSignerCmd.Flags().Uint64("index", 0, "signer index in the signature mask")

	setStaleThresholdCmd.Flags().Int64("seconds", 600, "max price age in seconds")
}
