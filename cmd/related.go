package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aonescu/kubelens/internal/config"
	"github.com/aonescu/kubelens/internal/related"
)

func newRelatedCmd(opts *rootOptions) *cobra.Command {
	var namespace, selector, names string
	cmd := &cobra.Command{
		Use:   "related KIND",
		Short: "List resources of KIND matching a label selector or a set of names",
		Example: `  kubelens related pods --selector app=web
  kubelens related services --names api,frontend --namespace shop`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (selector == "") == (names == "") {
				return fmt.Errorf("exactly one of --selector or --names is required")
			}

			var cr related.Criteria
			if selector != "" {
				set, err := related.ParseSelector(selector)
				if err != nil {
					return err
				}
				cr = related.MatchSelector(set)
			} else {
				cr = related.MatchNames(config.SplitList(names)...)
			}

			e, err := opts.connect()
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			registry := related.NewRegistry(e.client)
			resolver, ok := registry.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown kind %q, expected one of: %s", args[0], strings.Join(registry.Names(), ", "))
			}

			value, err := resolver.Related(cmd.Context(), namespace, cr)
			if err != nil {
				return err
			}
			out, err := value.YAML()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "default", "namespace to search")
	cmd.Flags().StringVarP(&selector, "selector", "l", "", "label selector, e.g. app=web,tier=frontend")
	cmd.Flags().StringVar(&names, "names", "", "comma-separated resource names")
	return cmd
}

func newDescribeCmd(opts *rootOptions) *cobra.Command {
	var namespace string
	cmd := &cobra.Command{
		Use:       "describe (service|pod) NAME",
		Short:     "Show the resources related to a Service or a Pod",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"service", "pod"},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.connect()
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			var d *related.Description
			switch strings.ToLower(args[0]) {
			case "service", "services", "svc":
				d, err = related.DescribeService(cmd.Context(), e.client, namespace, args[1])
			case "pod", "pods", "po":
				d, err = related.DescribePod(cmd.Context(), e.client, namespace, args[1])
			default:
				return fmt.Errorf("cannot describe %q, expected service or pod", args[0])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:       %s\nNamespace:  %s\nKind:       %s\n", d.Name, d.Namespace, d.Kind)
			section, err := d.YAML()
			if err != nil {
				return err
			}
			fmt.Fprint(out, section)
			return nil
		},
	}
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "default", "namespace of the object")
	return cmd
}
