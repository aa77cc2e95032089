package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lex00/eks-blueprints-go/internal/publish"
)

type publishOptions struct {
	configPath string
	bucket     string
	prefix     string
	format     string
}

func newPublishCmd() *cobra.Command {
	var opts publishOptions

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the template and manifests to S3",
		Long: `Publish synthesizes the stack and uploads the template and the team
manifest bundle to S3. Keys are <prefix>/<sha256>.<ext>, so unchanged
assets keep their key.

Without --bucket the bootstrap asset bucket of the target environment is
used, which needs CDK_DEFAULT_ACCOUNT and CDK_DEFAULT_REGION.

Examples:
    eks-blueprints publish --bucket my-assets --prefix eks`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runPublish(ctx, cmd.OutOrStdout(), opts)
		},
	}

	addConfigFlag(cmd, &opts.configPath)
	cmd.Flags().StringVar(&opts.bucket, "bucket", "", "Destination bucket (default: the environment's asset bucket)")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "Key prefix")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "Template format: json or yaml")

	return cmd
}

func runPublish(ctx context.Context, out io.Writer, opts publishOptions) error {
	format, err := parseFormat(opts.format)
	if err != nil {
		return err
	}

	_, stack, err := buildStack(opts.configPath, "")
	if err != nil {
		return err
	}

	bucket := opts.bucket
	if bucket == "" {
		if bucket, err = publish.DefaultBucket(stack.Account(), stack.Region()); err != nil {
			return err
		}
	}

	assets, err := publish.Assets(stack, format)
	if err != nil {
		return err
	}

	client, err := publish.NewClient(ctx, stack.Region())
	if err != nil {
		return err
	}
	return publishAssets(ctx, out, &publish.Publisher{Client: client, Bucket: bucket, Prefix: opts.prefix}, assets)
}

func publishAssets(ctx context.Context, out io.Writer, p *publish.Publisher, assets []publish.Asset) error {
	objects, err := p.Publish(ctx, assets)
	for _, obj := range objects {
		fmt.Fprintf(out, "Published %s -> s3://%s/%s\n", obj.Name, obj.Bucket, obj.Key)
	}
	return err
}
