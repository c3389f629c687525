package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/turnstream/config"
	"github.com/hupe1980/turnstream/resource"
)

// withReconciler runs fn against the configured reconciler.
func (a *app) withReconciler(fn func(r *resource.Reconciler) error) error {
	client, err := a.client()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()
	return fn(client.Reconciler())
}

func newFileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file",
		Short: "Manage uploaded files",
	}

	var knownID string
	upload := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a file unless the known id still exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withReconciler(func(r *resource.Reconciler) error {
				id, err := r.EnsureFile(cmd.Context(), args[0], knownID)
				if err != nil {
					return err
				}
				fmt.Println(id)
				return nil
			})
		},
	}
	upload.Flags().StringVar(&knownID, "id", "", "Previously known file id")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an uploaded file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withReconciler(func(r *resource.Reconciler) error {
				status, err := r.DeleteFile(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Println(status)
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List uploaded files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withReconciler(func(r *resource.Reconciler) error {
				files, err := r.ListFiles(cmd.Context())
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Printf("%s  %s %s\n", f.ID, f.Filename, dimStyle.Render(fmt.Sprintf("(%d bytes)", f.Bytes)))
				}
				return nil
			})
		},
	}

	cmd.AddCommand(upload, del, list)
	return cmd
}

func newStoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the file search vector store",
	}

	var save bool
	ensure := &cobra.Command{
		Use:   "ensure",
		Short: "Resolve the configured vector store, creating it when missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withReconciler(func(r *resource.Reconciler) error {
				fs := a.settings.FileSearch
				id, err := r.EnsureVectorStore(cmd.Context(), fs.VectorStoreName, fs.VectorStoreID)
				if err != nil {
					return err
				}
				fmt.Println(id)
				if save && id != fs.VectorStoreID {
					a.settings.FileSearch.VectorStoreID = id
					return config.Save(a.configDir, a.settings)
				}
				return nil
			})
		},
	}
	ensure.Flags().BoolVar(&save, "save", false, "Write the resolved id to config.toml")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a vector store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withReconciler(func(r *resource.Reconciler) error {
				status, err := r.DeleteVectorStore(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Println(status)
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list [store-id]",
		Short: "List vector stores, or the files attached to one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withReconciler(func(r *resource.Reconciler) error {
				if len(args) == 1 {
					atts, err := r.ListAttachments(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					for _, att := range atts {
						fmt.Printf("%s  %s\n", att.ID, dimStyle.Render(att.Status))
					}
					return nil
				}
				stores, err := r.ListVectorStores(cmd.Context())
				if err != nil {
					return err
				}
				for _, vs := range stores {
					fmt.Printf("%s  %s\n", vs.ID, vs.Name)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(ensure, del, list)
	return cmd
}

func newAttachCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <store-id> <file-id>",
		Short: "Attach an uploaded file to a vector store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withReconciler(func(r *resource.Reconciler) error {
				id, err := r.EnsureAttachment(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Println(id)
				return nil
			})
		},
	}
}

func newDetachCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detach <store-id> <file-id>",
		Short: "Detach a file from a vector store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withReconciler(func(r *resource.Reconciler) error {
				status, err := r.DeleteAttachment(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Println(status)
				return nil
			})
		},
	}
}
