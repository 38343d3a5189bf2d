package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the Paymo user whose entries are counted",
	Args:  cobra.NoArgs,
	RunE:  runMe,
}

func runMe(cmd *cobra.Command, args []string) error {
	client, closeFn, err := newPaymoClient(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	u, err := client.Me(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:    %d\n", u.ID)
	fmt.Fprintf(out, "Name:  %s\n", u.Name)
	fmt.Fprintf(out, "Email: %s\n", u.Email)
	return nil
}
