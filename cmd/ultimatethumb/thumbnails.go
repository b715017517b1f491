package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dixieflatline76/UltimateThumb/pkg/thumbnail"
)

// withApp wires the services for the duration of fn.
func (c *cli) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, c.cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func addOptionFlag(cmd *cobra.Command, flags *[]string) {
	cmd.Flags().StringArrayVarP(flags, "option", "o", nil,
		"thumbnail option as key=value (crop, upscale, factor2x, quality, pngquant, viewport=WxH)")
}

// parseOptions applies "key=value" flags on top of the configured defaults.
// Viewports are given as "WxH".
func parseOptions(base thumbnail.Options, flags []string, size string) (thumbnail.Options, error) {
	m := make(map[string]any, len(flags)+1)
	for _, f := range flags {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			return thumbnail.Options{}, fmt.Errorf("%w: %q is not key=value", thumbnail.ErrInvalidOption, f)
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "viewport" {
			w, h, _ := strings.Cut(v, "x")
			m[k] = []string{w, h}
			continue
		}
		m[k] = v
	}
	if size != "" {
		m["size"] = size
	}
	return thumbnail.Decode(base, m)
}

func newNameCmd(c *cli) *cobra.Command {
	var options []string

	cmd := &cobra.Command{
		Use:   "name SOURCE SIZE",
		Short: "Print the name of a thumbnail and register it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app) error {
				opts, err := parseOptions(a.engine.Defaults(), options, args[1])
				if err != nil {
					return err
				}
				t, err := a.engine.New(args[0], opts)
				if err != nil {
					return err
				}
				name, err := t.Name(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), name)
				return nil
			})
		},
	}
	addOptionFlag(cmd, &options)
	return cmd
}

func newResolveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve NAME",
		Short: "Print the source and options a thumbnail name stands for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app) error {
				t, err := a.engine.FromName(ctx, args[0])
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "source:  %s\n", t.Source())
				fmt.Fprintf(w, "options: %s\n", t.Options())
				return nil
			})
		},
	}
}

func newPlanCmd(c *cli) *cobra.Command {
	var options []string

	cmd := &cobra.Command{
		Use:   "plan SOURCE SIZES",
		Short: "List the thumbnails of a comma separated size list",
		Long: `List the thumbnails of a comma separated size list. Sizes beyond the
source are dropped unless upscale=true is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app) error {
				opts, err := parseOptions(a.engine.Defaults(), options, "")
				if err != nil {
					return err
				}
				thumbs, err := a.engine.Set(ctx, args[0], args[1], opts)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "REQUESTED\tESTIMATED\tVIEWPORT\tNAME\tURL\tURL 2X")
				for _, t := range thumbs {
					name, err := t.Name(ctx)
					if err != nil {
						return err
					}
					est, err := t.EstimatedSize(ctx)
					if err != nil {
						return err
					}
					vp, err := t.Viewport(ctx)
					if err != nil {
						return err
					}
					url, err := t.URL(ctx)
					if err != nil {
						return err
					}
					url2x, err := t.URL2x(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", t.RequestedSize(), est, vp, name, url, url2x)
				}
				return w.Flush()
			})
		},
	}
	addOptionFlag(cmd, &options)
	return cmd
}

func newOptionsCmd(c *cli) *cobra.Command {
	var (
		options []string
		factor  int
	)

	cmd := &cobra.Command{
		Use:   "options SOURCE SIZE",
		Short: "Print the renderer arguments of a thumbnail",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app) error {
				opts, err := parseOptions(a.engine.Defaults(), options, args[1])
				if err != nil {
					return err
				}
				t, err := a.engine.New(args[0], opts)
				if err != nil {
					return err
				}
				ro, err := t.ResizeOptions(ctx, factor)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(ro.Args(), " "))
				return nil
			})
		},
	}
	addOptionFlag(cmd, &options)
	cmd.Flags().IntVar(&factor, "factor", 1, "pixel density factor")
	return cmd
}

func newGenerateCmd(c *cli) *cobra.Command {
	var (
		options    []string
		withBase64 bool
	)

	cmd := &cobra.Command{
		Use:   "generate SOURCE SIZES",
		Short: "Render the thumbnails of a size list into storage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app) error {
				opts, err := parseOptions(a.engine.Defaults(), options, "")
				if err != nil {
					return err
				}
				thumbs, err := a.engine.Set(ctx, args[0], args[1], opts)
				if err != nil {
					return err
				}
				if err := a.engine.Pregenerate(ctx, thumbs); err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				for _, t := range thumbs {
					for _, f := range []int{1, 2} {
						if f == 2 && !t.Options().Factor2x {
							continue
						}
						path, err := a.engine.StoragePath(ctx, t, f)
						if err != nil {
							return err
						}
						fmt.Fprintln(w, path)
					}
					if withBase64 {
						uri, err := a.engine.Base64(ctx, t)
						if err != nil {
							return err
						}
						fmt.Fprintln(w, uri)
					}
				}
				return nil
			})
		},
	}
	addOptionFlag(cmd, &options)
	cmd.Flags().BoolVar(&withBase64, "base64", false, "also print the 1x thumbnail as a data URI")
	return cmd
}
