package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zimmermanw84/ts-visio-sub000/pkg/autolayout"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/connector"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/page"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/shape"
)

func (c *CLI) connectCommand() *cobra.Command {
	var lenient bool

	cmd := &cobra.Command{
		Use:   "connect <page> <from> <to>",
		Short: "Route a connector between two shapes",
		Long: `Connect routes a straight connector between the boundaries of two shapes,
at any depth, and records it on the page. Stored connectors are rerouted
whenever an edit moves their endpoints.`,
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: c.completePages,
		RunE: func(cmd *cobra.Command, args []string) error {
			if lenient {
				c.cfg.Connector.Policy = connector.PolicyLenient.String()
			}
			var g connector.Geometry
			if _, err := c.editPage(cmd.Context(), args[0], func(p *page.Page) error {
				var err error
				g, err = p.Connect(args[1], args[2])
				return err
			}); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printSuccess(w, "Connected")
			printConnector(w, g)
			return nil
		},
	}

	cmd.Flags().BoolVar(&lenient, "lenient", false, "route missing endpoints at the page origin instead of failing")
	return cmd
}

func (c *CLI) containerCommand() *cobra.Command {
	var (
		axis             string
		spacing, padding float64
	)

	cmd := &cobra.Command{
		Use:   "container <page> <shape>",
		Short: "Turn a shape into a container or change its stacking",
		Long: `Container promotes a shape to a container, or reconfigures an existing one.
Flags that are not given keep the container's current value, falling back to
the configured layout defaults.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completePages,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("axis") {
				axis = c.cfg.Layout.Axis
			}
			ax, err := shape.ParseAxis(axis)
			if err != nil {
				return err
			}
			p, err := c.editPage(cmd.Context(), args[0], func(p *page.Page) error {
				sp, pad := p.ContainerDefaults(args[1])
				if r, ok := p.Tree().Get(args[1]); ok && r.Container != nil && !cmd.Flags().Changed("axis") {
					ax = r.Container.Axis
				}
				if cmd.Flags().Changed("spacing") {
					sp = spacing
				}
				if cmd.Flags().Changed("padding") {
					pad = padding
				}
				return p.MakeContainer(args[1], ax, sp, pad)
			})
			if err != nil {
				return err
			}
			r, _ := p.Tree().Get(args[1])
			printSuccess(cmd.OutOrStdout(), "%s stacks %s, spacing %s, padding %s",
				StyleValue.Render(args[1]), r.Container.Axis, ftoa(r.Container.Spacing), ftoa(r.Container.Padding))
			return nil
		},
	}

	cmd.Flags().StringVar(&axis, "axis", "", "vertical or horizontal")
	cmd.Flags().Float64Var(&spacing, "spacing", 0, "gap between members (inches)")
	cmd.Flags().Float64Var(&padding, "padding", 0, "inset between the container edge and its members (inches)")
	return cmd
}

func (c *CLI) memberCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "member <page> <container> <member>...",
		Short: "Add members to a container in order",
		Long: `Member appends each shape to the container's member list, restacks the
members and resizes the container to fit them. A shape that is not yet a
container is promoted with the configured defaults.`,
		Args:              cobra.MinimumNArgs(3),
		ValidArgsFunction: c.completePages,
		RunE: func(cmd *cobra.Command, args []string) error {
			containerID, members := args[1], args[2:]
			p, err := c.editPage(cmd.Context(), args[0], func(p *page.Page) error {
				for _, m := range members {
					if err := p.AddMember(containerID, m); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			r, _ := p.Tree().Get(containerID)
			w := cmd.OutOrStdout()
			printSuccess(w, "%s has %d members", StyleValue.Render(containerID), len(r.Container.Members))
			printKeyValue(w, "size", formatSize(r.Size))
			return nil
		},
	}
}

func (c *CLI) layoutCommand() *cobra.Command {
	var (
		engine, rankdir string
		noCache         bool
	)

	cmd := &cobra.Command{
		Use:   "layout <page>",
		Short: "Position the page's root shapes with Graphviz",
		Long: `Layout sends the page's root shapes and the connectors between them to
Graphviz, moves each root to its suggested center, then relayouts containers
and reroutes connectors. Children move with their roots.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completePages,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if engine != "" {
				c.cfg.Layout.Engine = engine
			}
			if rankdir != "" {
				c.cfg.Layout.RankDir = rankdir
			}
			lc, err := newCache(noCache)
			if err != nil {
				return err
			}
			defer lc.Close()
			c.layoutCache = lc
			defer func() { c.layoutCache = nil }()

			logger := loggerFromContext(ctx)
			prog := newProgress(logger)
			spinner := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), "Running "+c.cfg.Layout.Engine+"...")
			spinner.Start()

			p, err := c.editPage(ctx, args[0], func(p *page.Page) error {
				return p.AutoLayout(ctx)
			})
			spinner.Stop()
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Laid out %d root shapes", len(p.Tree().Roots())))
			printSuccess(cmd.OutOrStdout(), "Laid out %s", StyleValue.Render(p.ID()))
			return nil
		},
	}

	cmd.Flags().StringVar(&engine, "engine", "", "Graphviz engine ("+strings.Join(autolayout.Engines, ", ")+")")
	cmd.Flags().StringVar(&rankdir, "rankdir", "", "rank direction for dot: TB, BT, LR, RL")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "always run Graphviz instead of reusing cached layouts")
	return cmd
}
