// Package container stacks and sizes container shapes around their members.
//
// # Overview
//
// A container is a shape of kind [shape.KindContainer] carrying ordered
// membership metadata ([shape.ContainerState]). Every membership change is
// followed immediately by a restack and a resize, so a member is never added
// without also being positioned:
//
//	e := container.New()
//	_ = e.AddMember(tree, "lane", "step-1")
//	_ = e.AddMember(tree, "lane", "step-2") // step-2 sits below step-1
//
// # Stacking
//
// [Engine.Restack] lays members out from the container's inner top-left
// corner (its top-left minus the padding). A vertical stack grows downward
// with members left-aligned; a horizontal stack grows to the right with
// members top-aligned. Consecutive centers are separated by
// half(prev) + spacing + half(curr) along the stack axis. Members keep their
// own size and their own children are not reflowed. An unsized member takes
// up [MinExtent] on each axis.
//
// # Nesting
//
// A container may itself be a member of another container. Whenever a
// container is laid out, the containers holding it are laid out again,
// innermost first, and a container moved by a restack takes its members
// along. [Engine.Track] applies the same rules after a host moves a shape.
//
// # Sizing
//
// [Engine.ResizeToFit] wraps the union of the members' page-frame rectangles
// plus padding on every side. The container's locpin is scaled with its size
// and its own children are shifted back so that nothing inside the container
// moves on the page. A container that already fits is left untouched, which
// makes repeated calls bit-for-bit idempotent.
//
// # Z-Order
//
// A container must render behind its members. When a member shares the
// container's sibling list, [Engine.AddMember] moves the container directly
// behind the earliest such member. Members nested inside the container are
// behind-safe by construction, because a child always renders in front of
// its parent. Ordering of sibling lists the container does not share is left
// to the caller.
//
// # Atomicity
//
// Every exported operation either applies completely or leaves the tree as
// it found it.
package container
