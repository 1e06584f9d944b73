package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loipv/kafkautil/kafka"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe cluster reachability",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	admin, err := kafka.NewAdmin(kafka.WithBrokers(brokerList()...))
	if err != nil {
		return err
	}
	defer admin.Close()

	result, err := admin.Check(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "cluster %s: %d broker(s), %d topic(s)\n",
		result.Status, result.Brokers, result.Topics)
	return nil
}
