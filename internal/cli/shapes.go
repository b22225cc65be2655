package cli

import (
	"github.com/spf13/cobra"

	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/geom"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/page"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/shape"
)

// =============================================================================
// Flag Helpers
// =============================================================================

// pointFlag converts an "x,y" float slice flag into a point.
func pointFlag(name string, v []float64) (geom.Point, error) {
	if len(v) != 2 {
		return geom.Point{}, errs.New(errs.ErrCodeInvalidInput, "--%s takes two numbers x,y, got %d", name, len(v))
	}
	return geom.Pt(v[0], v[1]), nil
}

// sizeFlag converts a "w,h" float slice flag into a size.
func sizeFlag(name string, v []float64) (geom.Size, error) {
	if len(v) != 2 {
		return geom.Size{}, errs.New(errs.ErrCodeInvalidInput, "--%s takes two numbers w,h, got %d", name, len(v))
	}
	return geom.Sz(v[0], v[1]), nil
}

// =============================================================================
// Commands
// =============================================================================

func (c *CLI) addCommand() *cobra.Command {
	var (
		id, parent, name, kind string
		pin, size              []float64
	)

	cmd := &cobra.Command{
		Use:   "add <page>",
		Short: "Add a shape to a page",
		Long: `Add a shape to a page. --pin is the shape's center in its parent's frame
(the page frame for root shapes); the local pin sits at the center of the box.`,
		Example: `  tsvisio add page-1 --id box --pin 2,3 --size 1,0.5
  tsvisio add page-1 --parent box --pin 0.5,0.25 --size 0.25,0.25
  tsvisio add page-1 --kind foreign --pin 4,4`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completePages,
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := pointFlag("pin", pin)
			if err != nil {
				return err
			}
			sz, err := sizeFlag("size", size)
			if err != nil {
				return err
			}
			k, err := shape.ParseKind(kind)
			if err != nil {
				return err
			}
			if k != shape.KindShape && k != shape.KindForeign {
				return errs.New(errs.ErrCodeInvalidInput, "--kind must be shape or foreign; groups and containers come from attach and container")
			}
			if k == shape.KindForeign && !cmd.Flags().Changed("size") {
				sz = geom.Size{}
			}

			rec := shape.New(id, at, sz)
			rec.ParentID = parent
			rec.Name = name
			rec.Kind = k

			var added string
			if _, err := c.editPage(cmd.Context(), args[0], func(p *page.Page) error {
				added, err = p.AddShape(rec)
				return err
			}); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Added %s", StyleValue.Render(added))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "shape id (default: generated)")
	cmd.Flags().StringVar(&parent, "parent", "", "parent shape id (default: page)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&kind, "kind", "shape", "shape or foreign")
	cmd.Flags().Float64SliceVar(&pin, "pin", []float64{0, 0}, "pin x,y in the parent frame (inches)")
	cmd.Flags().Float64SliceVar(&size, "size", []float64{1, 1}, "size w,h (inches)")
	return cmd
}

func (c *CLI) attachCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <page> <shape> [parent]",
		Short: "Move a shape under a new parent without moving it on the page",
		Long: `Attach reparents a shape and rewrites its pin for the new parent's frame, so
its page position is unchanged. Omit the parent to move the shape onto the page.`,
		Args:              cobra.RangeArgs(2, 3),
		ValidArgsFunction: c.completePages,
		RunE: func(cmd *cobra.Command, args []string) error {
			parent := ""
			if len(args) == 3 {
				parent = args[2]
			}
			if _, err := c.editPage(cmd.Context(), args[0], func(p *page.Page) error {
				return p.Attach(args[1], parent)
			}); err != nil {
				return err
			}
			if parent == "" {
				parent = "page"
			}
			printSuccess(cmd.OutOrStdout(), "Attached %s under %s", StyleValue.Render(args[1]), StyleValue.Render(parent))
			return nil
		},
	}
}

func (c *CLI) moveCommand() *cobra.Command {
	var pin, center []float64

	cmd := &cobra.Command{
		Use:               "move <page> <shape>",
		Short:             "Move a shape by pin (parent frame) or center (page frame)",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completePages,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				edit func(*page.Page) error
				err  error
			)
			switch {
			case cmd.Flags().Changed("center"):
				var at geom.Point
				if at, err = pointFlag("center", center); err != nil {
					return err
				}
				edit = func(p *page.Page) error { return p.MoveTo(args[1], at) }
			case cmd.Flags().Changed("pin"):
				var at geom.Point
				if at, err = pointFlag("pin", pin); err != nil {
					return err
				}
				edit = func(p *page.Page) error { return p.Move(args[1], at) }
			default:
				return errs.New(errs.ErrCodeInvalidInput, "one of --pin or --center is required")
			}

			p, err := c.editPage(cmd.Context(), args[0], edit)
			if err != nil {
				return err
			}
			abs, err := p.Resolve(args[1])
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Moved %s to %s", StyleValue.Render(args[1]), formatPoint(abs))
			return nil
		},
	}

	cmd.Flags().Float64SliceVar(&pin, "pin", nil, "new pin x,y in the parent frame")
	cmd.Flags().Float64SliceVar(&center, "center", nil, "new center x,y in the page frame")
	cmd.MarkFlagsMutuallyExclusive("pin", "center")
	return cmd
}

func (c *CLI) resizeCommand() *cobra.Command {
	var size []float64

	cmd := &cobra.Command{
		Use:               "resize <page> <shape>",
		Short:             "Change a shape's size and relayout the containers holding it",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completePages,
		RunE: func(cmd *cobra.Command, args []string) error {
			sz, err := sizeFlag("size", size)
			if err != nil {
				return err
			}
			if _, err := c.editPage(cmd.Context(), args[0], func(p *page.Page) error {
				return p.Resize(args[1], sz)
			}); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Resized %s to %s", StyleValue.Render(args[1]), formatSize(sz))
			return nil
		},
	}

	cmd.Flags().Float64SliceVar(&size, "size", nil, "new size w,h (inches)")
	_ = cmd.MarkFlagRequired("size")
	return cmd
}

func (c *CLI) resolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "resolve <page> <shape>",
		Short:             "Print a shape's position in the page frame",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completePages,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.readPage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			abs, err := p.Resolve(args[1])
			if err != nil {
				return err
			}
			b, err := p.Bounds(args[1])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printKeyValue(w, "pin", formatPoint(abs))
			printKeyValue(w, "center", formatPoint(b.Center()))
			printKeyValue(w, "bounds", formatRect(b))
			return nil
		},
	}
}
