package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/page"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/store"
)

// initCommand creates an empty page.
func (c *CLI) initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init <page>",
		Short: "Create an empty page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pageID := args[0]

			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if !force {
				if _, err := s.Load(ctx, pageID); err == nil {
					return errs.New(errs.ErrCodeInvalidInput, "page %q already exists (use --force to replace it)", pageID)
				} else if !errs.Is(err, errs.ErrCodeNotFound) {
					return err
				}
			}
			p, err := page.New(pageID)
			if err != nil {
				return err
			}
			if err := p.Save(ctx, s); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Created page %s", StyleValue.Render(pageID))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "replace an existing page")
	return cmd
}

// pagesCommand lists stored pages.
func (c *CLI) pagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pages",
		Short: "List stored pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			ids, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			slices.Sort(ids)
			w := cmd.OutOrStdout()
			if len(ids) == 0 {
				printInfo(w, "No pages in the %s store", c.cfg.Store.Backend)
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(w, id)
			}
			return nil
		},
	}
}

// showCommand prints a page as a table or as a serialized document.
func (c *CLI) showCommand() *cobra.Command {
	var asJSON, asYAML bool

	cmd := &cobra.Command{
		Use:               "show <page>",
		Short:             "Print a page's shapes and connectors",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completePages,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.readPage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch {
			case asJSON:
				return writeDocumentJSON(w, p.Document())
			case asYAML:
				return writeDocumentYAML(w, p.Document())
			}

			fmt.Fprintln(w, StyleTitle.Render(p.ID()))
			if p.Tree().Len() == 0 {
				printInfo(w, "No shapes")
				return nil
			}
			fmt.Fprintln(w, renderPageTable(p))
			for _, g := range p.Connectors() {
				printConnector(w, g)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored document as JSON")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the stored document as YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")
	return cmd
}

func writeDocumentJSON(w io.Writer, doc *store.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func writeDocumentYAML(w io.Writer, doc *store.Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
