package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KeMezz/taskdown/internal/assets"
)

// AssetOptions holds flags for the asset command.
type AssetOptions struct {
	*RootOptions
	VaultPath string
	Name      string
	Image     bool
}

// NewAssetCommand creates the asset command.
func NewAssetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AssetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "asset <file>...",
		Short: "Store files in a vault's asset directory",
		Long: `Store files in a vault's asset directory and print their asset URLs.

Without --image each file keeps its base name (or --name for a single file).
With --image files are validated as images and stored under random names.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsset(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.VaultPath, "vault", "", "vault root (default: configured vault)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "stored file name (single file only)")
	cmd.Flags().BoolVar(&opts.Image, "image", false, "validate as images and generate names")

	return cmd
}

type assetOutput struct {
	File  string `json:"file"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

func runAsset(cmd *cobra.Command, opts *AssetOptions, paths []string) error {
	vaultRoot := opts.VaultPath
	if vaultRoot == "" {
		vaultRoot = opts.Config.Vault.Path
	}
	if vaultRoot == "" {
		return &ExitError{Code: ExitCommandError, Message: "--vault is required when no vault is configured"}
	}
	if opts.Name != "" && len(paths) > 1 {
		return &ExitError{Code: ExitCommandError, Message: "--name needs exactly one file"}
	}
	if opts.Name != "" && opts.Image {
		return &ExitError{Code: ExitCommandError, Message: "--name cannot be combined with --image"}
	}

	files := make([]assets.File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return WrapExitError(ExitCommandError, "reading input", err)
		}
		files = append(files, assets.File{Name: filepath.Base(p), Data: data})
	}

	writer := assets.NewWriter(opts.Logger)
	out := make([]assetOutput, len(files))
	failed := 0

	if opts.Image {
		ctx := commandContext(cmd)
		uploader := assets.NewUploader(writer,
			assets.WithMaxBytes(opts.Config.Assets.MaxImageBytes),
			assets.WithConcurrency(opts.Config.Assets.Concurrency),
		)
		for i, r := range uploader.UploadImages(ctx, vaultRoot, files) {
			out[i] = assetOutput{File: paths[i], URL: r.URL}
			if r.Err != nil {
				out[i].Error = r.Err.Error()
				failed++
			}
		}
	} else {
		for i, f := range files {
			name := f.Name
			if opts.Name != "" {
				name = opts.Name
			}
			url, err := writer.Save(name, f.Data, vaultRoot)
			out[i] = assetOutput{File: paths[i], URL: url}
			if err != nil {
				out[i].Error = err.Error()
				failed++
			}
		}
	}

	if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	if failed > 0 {
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d of %d files failed", failed, len(files))}
	}
	return nil
}
