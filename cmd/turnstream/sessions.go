package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List or delete stored sessions",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			store := client.Sessions()
			ids, err := store.List()
			if err != nil {
				return err
			}
			for _, id := range ids {
				sess, err := store.Load(id)
				if err != nil {
					return err
				}
				fmt.Printf("%s  %s %s\n", id, sess.Title, dimStyle.Render(fmt.Sprintf("(%d turns)", sess.Len())))
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()
			return client.Sessions().Delete(args[0])
		},
	})

	return cmd
}
