package elementbuilder

import (
	"errors"
	"strconv"

	"mpkg/internal/manifest"
	"mpkg/internal/manifestxml"
)

// Serializer renders elements in the markup Builder reads.
type Serializer struct{}

// Render returns the XML node for el.
func (Serializer) Render(el manifest.Element, ctx manifestxml.RenderContext) (manifestxml.Node, error) {
	if el == nil {
		return manifestxml.Node{}, manifest.ErrNilElement
	}
	if el.ID() == "" {
		return manifestxml.Node{}, errors.New("element has no identifier")
	}

	kind := el.Kind()
	node := manifestxml.NewNode(manifestxml.ElementName(kind))
	node.SetAttr("id", el.ID())
	node.SetAttr("type", el.Flavor().String())
	if ref := el.Reference(); ref != nil {
		node.SetAttr("ref", ref.String())
	}

	node.AddText("description", el.Description())
	if tags := el.Tags(); len(tags) > 0 {
		wrapper := manifestxml.NewNode("tags")
		for _, tag := range tags {
			wrapper.AddText("tag", tag)
		}
		node.AddChild(wrapper)
	}
	node.AddText("url", relativizeLocator(el.URI(), ctx.BaseDir))
	node.AddText("mimetype", el.MimeType())
	if c := el.Checksum(); !c.IsZero() {
		checksum := manifestxml.NewNode("checksum")
		checksum.SetAttr("type", c.Type)
		checksum.Content = c.Value
		node.AddChild(checksum)
	}
	if size := el.Size(); size >= 0 {
		node.AddText("size", strconv.FormatInt(size, 10))
	}
	if track, ok := el.(*manifest.Track); ok && track.Duration() > 0 {
		node.AddText("duration", strconv.FormatInt(track.Duration(), 10))
	}
	return node, nil
}
